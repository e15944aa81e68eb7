package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spacegate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/", func(c *gin.Context) {
		if claims, ok := c.Get(ClaimsKey); ok {
			c.String(http.StatusOK, claims.(*services.ProbeClaims).ClientName)
			return
		}
		c.String(http.StatusOK, "ok")
	})
	return r
}

func serve(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimitMiddleware(NewRateLimiter(0.001, 2)))

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.Same(t, rl.GetLimiter("10.0.0.1"), rl.GetLimiter("10.0.0.1"))
	assert.NotSame(t, rl.GetLimiter("10.0.0.1"), rl.GetLimiter("10.0.0.2"))
}

func TestRateLimiterDropsIdleIPs(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	for i := 0; i < 500; i++ {
		rl.GetLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Len(t, rl.limiters, 500)

	active := rl.GetLimiter("10.9.9.9")
	now = now.Add(LimiterIdleTTL / 2)
	assert.Same(t, active, rl.GetLimiter("10.9.9.9"))

	now = now.Add(LimiterIdleTTL / 2)
	rl.GetLimiter("10.9.9.10")
	assert.Len(t, rl.limiters, 2, "only recently seen IPs remain")
	assert.Same(t, active, rl.GetLimiter("10.9.9.9"))
}

func TestRequestLoggerMiddleware(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	w := serve(newEngine(RequestLoggerMiddleware()), "")
	require.Equal(t, http.StatusOK, w.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "/", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "10.0.0.1", entry.Data["ip"])
}

func TestBearerAuthMiddlewareDisabled(t *testing.T) {
	w := serve(newEngine(BearerAuthMiddleware(nil)), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestBearerAuthMiddleware(t *testing.T) {
	auth, err := services.NewAuthService("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	r := newEngine(BearerAuthMiddleware(auth))

	token, err := auth.GenerateToken("deployer")
	require.NoError(t, err)

	w := serve(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deployer", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+token+"x").Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	w := serve(newEngine(SecurityHeadersMiddleware()), "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestLooksLikeJWT(t *testing.T) {
	assert.True(t, looksLikeJWT("aaaaaaaaaa.bbbbbbbbbb.cccccccccc"))
	assert.False(t, looksLikeJWT("a.b.c"))
	assert.False(t, looksLikeJWT("aaaaaaaaaabbbbbbbbbbcccccccccc"))
}
