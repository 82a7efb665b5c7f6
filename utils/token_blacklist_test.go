package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlacklist_Memory(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist(nil)

	assert.False(t, bl.IsRevoked(ctx, "tok"))
	require.NoError(t, bl.Revoke(ctx, "tok", time.Now().Add(time.Hour)))
	assert.True(t, bl.IsRevoked(ctx, "tok"))

	// already expired tokens need no entry
	require.NoError(t, bl.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	assert.False(t, bl.IsRevoked(ctx, "old"))
}

func TestTokenBlacklist_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	bl := NewTokenBlacklist(rc)
	require.NoError(t, bl.Revoke(ctx, "tok", time.Now().Add(time.Minute)))

	assert.True(t, mr.Exists(blacklistPrefix+"tok"))
	assert.True(t, bl.IsRevoked(ctx, "tok"))
	assert.False(t, bl.IsRevoked(ctx, "other"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, bl.IsRevoked(ctx, "tok"))
}

func TestTokenBlacklist_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rc.Close() })
	mr.Close()

	bl := NewTokenBlacklist(rc)
	assert.False(t, bl.IsRevoked(context.Background(), "tok"))
}
