package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agency-site-backend/config"
	"agency-site-backend/internal/repository/postgres"
	"agency-site-backend/internal/usecase"
	"agency-site-backend/pkg/database"
	"agency-site-backend/pkg/email"
	"agency-site-backend/pkg/logger"
)

// redeliver resends contact emails the provider rejected while the failed
// delivery archive was enabled.
func main() {
	limit := flag.Int("limit", 50, "maximum archived messages to process (max 500)")
	listOnly := flag.Bool("list", false, "print pending messages without sending")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	if cfg.DBUrl == "" {
		logger.Log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	sender, err := email.NewSenderFromConfig(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Error("Failed to configure email provider", "error", err)
		os.Exit(1)
	}

	uc := usecase.NewRedeliveryUsecase(postgres.NewFailedDeliveryRepository(dbPool), sender, nil, logger.Log)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *listOnly {
		items, err := uc.ListPending(ctx, *limit)
		if err != nil {
			logger.Log.Error("Failed to list pending deliveries", "error", err)
			os.Exit(1)
		}
		_ = enc.Encode(items)
		return
	}

	report, err := uc.Redeliver(ctx, *limit)
	if report != nil {
		_ = enc.Encode(report)
	}
	if err != nil {
		logger.Log.Error("Redelivery stopped", "error", err)
		os.Exit(1)
	}
	if report.Failed > 0 {
		os.Exit(2)
	}
}
