package v1

import (
	"log/slog"
	"time"

	"agency-site-backend/config"
	"agency-site-backend/internal/delivery/http/middleware"
	"agency-site-backend/internal/domain"
	"agency-site-backend/internal/usecase"
	"agency-site-backend/pkg/metrics"
	"agency-site-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config    *config.Config
	Logger    *slog.Logger
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	// RedeliveryUC is nil when the failed-delivery archive is disabled
	RedeliveryUC domain.RedeliveryUsecase
	Metrics      *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	Security *security.SecurityLogger
	// Redis is optional; the rate limiter falls back to memory without it
	Redis *goredis.Client
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.ErrorHandler(log))

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	NewSystemHandler(api, deps.HealthUC, PublicConfigFrom(cfg))

	// Public routes
	var contactMiddlewares []gin.HandlerFunc
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		limiter := middleware.NewRateLimiter(middleware.ContactRateLimitConfig(cfg.RateLimitLimit, window), deps.Redis, deps.Security)
		contactMiddlewares = append(contactMiddlewares, limiter.Middleware())
	}
	NewContactHandler(api, deps.ContactUC, contactMiddlewares...)

	// Swagger
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	if deps.RedeliveryUC != nil && cfg.AdminJWTSecret != "" {
		protected := api.Group("")
		protected.Use(middleware.AdminAuth(cfg.AdminJWTSecret, deps.Security))
		NewAdminHandler(protected, deps.RedeliveryUC)
	}

	return r
}
