package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cppla/luntan/config"
	"github.com/cppla/luntan/models"
	"github.com/cppla/luntan/routes"
	"github.com/cppla/luntan/services"
	"github.com/cppla/luntan/store"
	"github.com/cppla/luntan/utils"
)

func main() {
	// .env is optional; real environment variables win over it
	envErr := godotenv.Load()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Initialize logger early
	logger, err := utils.InitLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Info("no .env file loaded", zap.Error(envErr))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.AppConfig, logger *zap.Logger) error {
	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		return err
	}
	st := store.New(db)

	rc, err := utils.NewRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist falls back to memory", zap.Error(err))
		_ = rc.Close()
		rc = nil
	}
	if rc != nil {
		defer rc.Close()
	}

	enricher := services.NewEnricher(st)
	users := services.NewUserService(st, enricher, logger)
	posts := services.NewPostService(st, enricher, logger)
	relations := services.NewRelationService(st, logger)
	stats := services.NewStatsService(st)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := users.EnsureSuperuser(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail)
		cancel()
		if err != nil {
			return fmt.Errorf("seed superuser: %w", err)
		}
	}

	if cfg.SeedUsers > 0 {
		seeder := services.NewSeeder(st, users, posts, relations, logger)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		_, err := seeder.Seed(ctx, services.SeedOptions{Users: cfg.SeedUsers, PostsPerUser: cfg.SeedPostsPerUser})
		cancel()
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	accessLog := logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			logger.Warn("gin access log unavailable, using application log", zap.Error(err))
		} else {
			accessLog = gl
		}
	}

	r := routes.SetupRouter(cfg, routes.Deps{
		Store:     st,
		Users:     users,
		Posts:     posts,
		Relations: relations,
		Stats:     stats,
		Blacklist: utils.NewTokenBlacklist(rc),
		Images:    utils.NewLocalUploader(cfg.UploadDir, cfg.UploadURLPrefix, cfg.UploadMaxMB),
		AccessLog: accessLog,
		Logger:    logger,
	})

	logger.Info("starting server (graceful)", zap.String("addr", cfg.Addr()))
	return utils.GraceServer(context.Background(), cfg.Addr(), r, logger)
}
