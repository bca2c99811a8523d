package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-enhancer/internal/enhance"
	"resume-enhancer/internal/services/health"
	"resume-enhancer/internal/shared/config"
	"resume-enhancer/internal/shared/metrics"
	"resume-enhancer/internal/shared/server/middleware"
	"resume-enhancer/internal/shared/server/respond"
)

const (
	apiPrefix        = "/api/v1"
	rateGroupEnhance = "ENHANCE"
	rateGroupDefault = "DEFAULT"
	defaultPerMinute = 120
	enhanceRoutePath = apiPrefix + "/enhance"
)

// RouterDeps holds the handlers mounted on the router.
type RouterDeps struct {
	Config         config.Config
	EnhanceHandler *enhance.Handler
	Health         *health.Service
	// Limiter is shared across requests; tests inject one with a fixed clock.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rules := map[string]middleware.RateLimitRule{
		rateGroupDefault: middleware.PerMinute(defaultPerMinute),
	}
	if deps.Config.RateLimitPerMinute > 0 {
		rules[rateGroupEnhance] = middleware.PerMinute(deps.Config.RateLimitPerMinute)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rules,
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroup,
			Limiter:      deps.Limiter,
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(deps.Config)
	}

	r.GET("/metrics", metrics.Handler())
	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	if deps.EnhanceHandler != nil {
		deps.EnhanceHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

func rateGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == enhanceRoutePath {
		return rateGroupEnhance
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
