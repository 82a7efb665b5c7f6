package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/luntan/config"
)

// NewRedis returns a client for the configured Redis, or nil when Redis is disabled.
// The ping error is returned so callers can decide whether to fall back.
func NewRedis(cfg config.AppConfig) (*redis.Client, error) {
	if !cfg.RedisEnabled {
		return nil, nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		return rc, err
	}
	return rc, nil
}
