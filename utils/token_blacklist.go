package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "jwt:blacklist:"

// TokenBlacklist remembers revoked tokens until they would have expired anyway.
// Redis is preferred; without it entries live in process memory.
type TokenBlacklist struct {
	rc *redis.Client

	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewTokenBlacklist creates a blacklist; rc may be nil.
func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, entries: map[string]time.Time{}}
}

// Revoke stores token until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
	}
	b.mu.Lock()
	b.entries[token] = expiresAt
	b.mu.Unlock()
	return nil
}

// IsRevoked checks if a token was revoked before natural expiration.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, blacklistPrefix+token).Result()
		if err != nil {
			// fail open to avoid locking every user out while Redis is down
			return false
		}
		return n > 0
	}

	b.mu.RLock()
	exp, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		b.mu.Lock()
		delete(b.entries, token)
		b.mu.Unlock()
		return false
	}
	return true
}
