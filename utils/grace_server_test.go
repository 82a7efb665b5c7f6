package utils

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServer_ServesUntilContextDone(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv := NewServer("127.0.0.1:0", handler, zap.NewNop(), time.Second, time.Second)
	require.NoError(t, srv.Listen())
	require.NotNil(t, srv.ListenAddr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.ListenAddr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_ListenError(t *testing.T) {
	srv := NewServer("127.0.0.1:-1", http.NotFoundHandler(), nil, time.Second, time.Second)
	assert.Nil(t, srv.ListenAddr())
	assert.Error(t, srv.Serve(context.Background()))
}
