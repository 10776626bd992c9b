package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cassa/internal/amqp"
	"cassa/internal/config"
	applog "cassa/internal/log"
	gsheet "cassa/internal/sheets/google"
	"cassa/internal/storage"
	"cassa/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logCfg := applog.DefaultConfig()
	logCfg.Component = "cassa-worker"
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("Starting cassa-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(repo, sheetsClient, amqpClient, cfg.MirrorBatchSize, cfg.MirrorSweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on anything recorded while the worker was down before
	// consuming live messages.
	logger.Info("Performing startup sweep")
	if err := mirror.SweepPending(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
		// Don't exit - the periodic sweep retries
	}

	logger.Info("Mirror worker running",
		"batch_size", cfg.MirrorBatchSize,
		"sweep_interval", cfg.MirrorSweepInterval)
	if err := mirror.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Mirror worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
