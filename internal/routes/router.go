package routes

import (
	"spacegate/internal/controllers"
	"spacegate/internal/middleware"
	"spacegate/internal/services"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the probe engine. usage is the OS query behind the
// cache, nil means gopsutil.
func NewRouter(cfg *services.Config, auth *services.AuthService, usage services.UsageFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLoggerMiddleware(), gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(100, 200)))
	r.Use(middleware.BearerAuthMiddleware(auth))

	cache := services.NewUsageCache(cfg.CacheTTL, usage)
	RegisterSpaceRoutes(r, controllers.NewSpaceController(cfg.Path, cfg.RequiredGB, cache.Usage, auth != nil))

	return r
}
