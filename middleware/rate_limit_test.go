package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(4).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// burst is half the per-minute rate
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))

	// buckets are per client
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))
}
