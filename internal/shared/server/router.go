package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"application-tracker/internal/services/health"
	"application-tracker/internal/shared/config"
	"application-tracker/internal/shared/metrics"
	"application-tracker/internal/shared/server/middleware"
	"application-tracker/internal/shared/server/respond"
	"application-tracker/internal/uploads"
)

// Rate limit groups.
const (
	groupSubmit  = "SUBMIT"
	groupStatus  = "STATUS_WRITE"
	groupPolling = "POLLING"
)

// ApplicationRoutes attaches the application routes. applyMiddleware is only
// used by the applications handler for its submit route.
type ApplicationRoutes interface {
	RegisterRoutes(r gin.IRouter, applyMiddleware ...gin.HandlerFunc)
}

type UploadRoutes interface {
	RegisterRoutes(r gin.IRouter)
}

// RouterDeps groups dependencies for route registration.
type RouterDeps struct {
	Config       config.Config
	Applications ApplicationRoutes
	Uploads      UploadRoutes
	Health       *health.Service
	// Limiter backs the rate limit middleware; nil uses the in-process bucket.
	Limiter middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.SafeHeader(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	// Health routes precede the rate limiter so load balancer checks are never throttled.
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	healthHandler := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status(c.Request.Context()))
	}
	r.GET("/health", healthHandler)
	r.GET("/api/health", healthHandler)

	if deps.Config.RateLimitEnabled {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				groupSubmit:  {Rate: 0.2, Burst: 5},
				groupStatus:  {Rate: 1, Burst: 10},
				groupPolling: {Rate: 5, Burst: 30},
			},
			DefaultGroup: groupPolling,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.Limiter,
		}))
	}

	r.GET("/metrics", metrics.Handler())

	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(r)
	}
	if deps.Applications != nil {
		maxBytes := deps.Config.MaxUploadBytes
		if maxBytes <= 0 {
			maxBytes = uploads.DefaultMaxBytes
		}
		deps.Applications.RegisterRoutes(r, middleware.SizeLimit(maxBytes))
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch {
	case c.Request.Method == http.MethodPost && c.Request.URL.Path == "/apply":
		return groupSubmit
	case c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/status"):
		return groupStatus
	default:
		return groupPolling
	}
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
