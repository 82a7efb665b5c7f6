package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReadTimeout     = 60 * time.Second
	defaultWriteTimeout    = defaultReadTimeout
	defaultShutdownTimeout = 30 * time.Second

	// A restarted child finds the parent's listener on this fd when the env var is set.
	inheritEnvKey   = "LUNTAN_INHERIT_LISTENER"
	inheritEnvValue = inheritEnvKey + "=1"
	inheritedFd     = 3
)

// Server is an http.Server that drains on SIGINT/SIGTERM or context
// cancellation, and hands its listener to a fresh process on SIGUSR2.
type Server struct {
	srv             *http.Server
	listener        net.Listener
	logger          *zap.Logger
	inherited       bool
	ShutdownTimeout time.Duration
}

// NewServer creates a Server with timeouts and handler. A nil logger discards lifecycle events.
func NewServer(addr string, handler http.Handler, logger *zap.Logger, readTimeout, writeTimeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger:          logger,
		inherited:       os.Getenv(inheritEnvKey) != "",
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Listen binds the listening socket, or adopts the one passed down by a parent process.
func (s *Server) Listen() error {
	if s.inherited {
		ln, err := net.FileListener(os.NewFile(inheritedFd, "listener"))
		if err != nil {
			return fmt.Errorf("inherit listener: %w", err)
		}
		s.listener = ln
		return nil
	}
	addr := s.srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	return nil
}

// ListenAddr is the bound address, or nil before Listen.
func (s *Server) ListenAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks until the server stops. A signal or ctx driven shutdown returns nil.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(s.listener) }()
	s.logger.Info("HTTP server listening", zap.String("addr", s.listener.Addr().String()))

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			return s.shutdown("context done", errCh)
		case sig := <-sigs:
			if sig == syscall.SIGUSR2 {
				pid, err := s.startNewProcess()
				if err != nil {
					s.logger.Error("restart failed, continue serving", zap.Error(err))
					continue
				}
				s.logger.Info("new process started, draining this one", zap.Int("pid", pid))
			}
			return s.shutdown(sig.String(), errCh)
		}
	}
}

func (s *Server) shutdown(reason string, errCh <-chan error) error {
	s.logger.Info("shutting down HTTP server", zap.String("reason", reason))
	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// startNewProcess re-executes the binary with the listener on fd 3.
func (s *Server) startNewProcess() (int, error) {
	tcpLn, ok := s.listener.(*net.TCPListener)
	if !ok {
		return 0, errors.New("listener is not *net.TCPListener")
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("listener file: %w", err)
	}
	defer file.Close()

	envs := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != inheritEnvValue {
			envs = append(envs, e)
		}
	}
	envs = append(envs, inheritEnvValue)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}

// GraceServer serves handler on addr until a shutdown signal or ctx ends.
func GraceServer(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	return NewServer(addr, handler, logger, defaultReadTimeout, defaultWriteTimeout).Serve(ctx)
}
