package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-site-backend/config"
	_ "agency-site-backend/docs" // Important for Swagger
	v1 "agency-site-backend/internal/delivery/http/v1"
	"agency-site-backend/internal/domain"
	"agency-site-backend/internal/repository/postgres"
	"agency-site-backend/internal/usecase"
	"agency-site-backend/pkg/captcha"
	"agency-site-backend/pkg/database"
	"agency-site-backend/pkg/email"
	"agency-site-backend/pkg/logger"
	"agency-site-backend/pkg/metrics"
	"agency-site-backend/pkg/redis"
	"agency-site-backend/pkg/security"
	"agency-site-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Agency Site Backend API
// @version         1.0
// @description     Contact form delivery for the agency website.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx := context.Background()

	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Log.Warn(w)
	}
	if cfg.Degraded {
		logger.Log.Warn("Running in degraded mode", "email_provider", cfg.EmailProvider, "bot_protection", cfg.BotProtectionEnabled())
	}
	logger.Log.Info("Starting agency site backend", "port", cfg.Port, "env", cfg.Env)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	seclog := security.NewSecurityLogger("agency-site-backend", cfg.Env)
	defer func() { _ = seclog.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var healthChecks []usecase.HealthCheck

	// 3. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.New(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		} else {
			defer redisClient.Close()
			healthChecks = append(healthChecks, usecase.HealthCheck{Name: "redis", Check: redis.HealthCheck(redisClient)})
		}
	}

	// 4. Setup Database (only for the failed-delivery archive)
	var archive domain.FailedDeliveryRepository
	if cfg.FailedDeliveryArchive {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := database.Migrate(dbPool); err != nil {
			logger.Log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		archive = postgres.NewFailedDeliveryRepository(dbPool)
		healthChecks = append(healthChecks, usecase.HealthCheck{Name: "database", Check: dbPool.Ping})
	}

	// 5. Setup Email Sender
	sender, err := email.NewSenderFromConfig(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Error("Failed to configure email provider", "provider", cfg.EmailProvider, "error", err)
		os.Exit(1)
	}

	// 6. Setup Bot Verification (optional)
	var verifier captcha.Verifier
	if cfg.BotProtectionEnabled() {
		verifier = captcha.NewRecaptchaVerifier(cfg.RecaptchaSecretKey, cfg.RecaptchaMinScore)
	}

	// 7. Setup UseCases
	contactUC := usecase.NewContactUsecase(usecase.ContactDeps{
		Sender:   sender,
		Validate: validation.New(),
		Verifier: verifier,
		Archive:  archive,
		Metrics:  m,
		Security: seclog,
		Logger:   logger.Log,
		From:     cfg.EmailFrom,
		To:       cfg.ContactEmailTo,
	})
	var redeliveryUC domain.RedeliveryUsecase
	if archive != nil {
		redeliveryUC = usecase.NewRedeliveryUsecase(archive, sender, m, logger.Log)
	}
	healthUC := usecase.NewHealthUsecase(healthChecks...)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Logger:       logger.Log,
		ContactUC:    contactUC,
		HealthUC:     healthUC,
		RedeliveryUC: redeliveryUC,
		Metrics:      m,
		Gatherer:     reg,
		Security:     seclog,
		Redis:        redisClient,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// In-flight sends are allowed to finish within the provider timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.EmailSendTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
