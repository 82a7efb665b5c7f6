package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 72, cfg.TokenTTLHours)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "luntan", cfg.DBName)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "/static/uploads", cfg.UploadURLPrefix)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoad_GroupedJSON(t *testing.T) {
	path := writeConfig(t, `{
		"app": {"AppPort": "9000", "JWTSecret": "from-file", "RateLimitPerMinute": 5},
		"database": {"Driver": "sqlite", "SQLitePath": "/tmp/forum.db"},
		"redis": {"Enabled": true, "RedisPort": 6380},
		"log": {"Level": "debug", "Compress": true},
		"admin": {"Username": "admin", "Password": "123456"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/forum.db", cfg.SQLitePath)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, 6380, cfg.RedisPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogCompress)
	assert.Equal(t, "admin@luntan.local", cfg.AdminEmail)
	assert.Equal(t, 5, cfg.SeedUsers)
	assert.Equal(t, 3, cfg.SeedPostsPerUser)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"app": {"AppPort": "9000", "JWTSecret": "from-file"}}`)
	t.Setenv("APP_PORT", "9100")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://127.0.0.1:5173")
	t.Setenv("SEED_USERS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.AppPort)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 1, cfg.TokenTTLHours)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.SeedUsers)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load(writeConfig(t, `{}`))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		_, err := Load(writeConfig(t, `{"app":`))
		assert.Error(t, err)
	})

	t.Run("invalid integer", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("REDIS_PORT", "not-a-port")
		_, err := Load(writeConfig(t, `{}`))
		assert.Error(t, err)
	})
}

func TestInitDatabase_SQLite(t *testing.T) {
	cfg := AppConfig{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db"), LogLevel: "silent"}

	type widget struct {
		ID   uint
		Name string
	}
	db, err := InitDatabase(cfg, &widget{})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&widget{}))

	_, err = InitDatabase(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}
