package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"voyago/config"
)

func newLimitedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func ping(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitExceededReturns429(t *testing.T) {
	config.AppConfig.MaxRequestsPerMin = 3
	r := newLimitedRouter()

	// Limiter state is per IP; this address is not reused elsewhere.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, ping(r, "10.1.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.1.0.1"))
}

func TestRateLimitIsPerIP(t *testing.T) {
	config.AppConfig.MaxRequestsPerMin = 2
	r := newLimitedRouter()

	assert.Equal(t, http.StatusOK, ping(r, "10.2.0.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.2.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.2.0.1"))

	// A different caller still has its full budget.
	assert.Equal(t, http.StatusOK, ping(r, "10.2.0.2"))
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func() (*gin.Context, *http.Request) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request = req
		return c, req
	}

	t.Run("first forwarded hop wins", func(t *testing.T) {
		c, req := newCtx()
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", getClientIP(c))
	})

	t.Run("garbage forwarded header is ignored", func(t *testing.T) {
		c, req := newCtx()
		req.Header.Set("X-Forwarded-For", "not-an-ip")
		req.Header.Set("X-Real-IP", "198.51.100.4")
		assert.Equal(t, "198.51.100.4", getClientIP(c))
	})

	t.Run("remote addr port is stripped", func(t *testing.T) {
		c, req := newCtx()
		req.RemoteAddr = "192.0.2.9:51652"
		assert.Equal(t, "192.0.2.9", getClientIP(c))
	})
}
