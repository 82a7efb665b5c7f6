package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cppla/luntan/config"
)

func TestGinzapAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(Ginzap(logger, time.RFC3339, true), RecoveryWithZap(logger, false))
	r.GET("/ok", func(c *gin.Context) { Success(c, gin.H{"pong": true}) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("/ok").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, "x=1", entries[0].ContextMap()["query"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 50000, body.Code)
	assert.Equal(t, 1, logs.FilterMessage("[Recovery from panic]").Len())
}

func TestInitLogger_WritesFile(t *testing.T) {
	path := t.TempDir() + "/logs/app.log"
	logger, err := InitLogger(configWithLogPath(path))
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()
	assert.FileExists(t, path)
}

func configWithLogPath(path string) config.AppConfig {
	return config.AppConfig{LogLevel: "info", LogPath: path}
}
