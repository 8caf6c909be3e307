package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/export"
	applog "tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
	"tally/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "worker"})
	applog.SetDefault(logger)

	logger.Info("Starting tally-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads the same store the API writes. The memory backend
	// holds no shared state across processes, so the worker requires sqlite.
	if cfg.DataBackend != "sqlite" {
		logger.Error("Worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var store services.Store
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()
	store = repo

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
		os.Exit(1)
	}
	exporter, err := export.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}
	logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reportWorker := worker.NewReportWorker(store, exporter, cfg.ExportInterval)

	// Export once at startup to cover events missed while the worker was
	// down.
	if err := reportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot failed", "error", err)
		// Keep going; the periodic loop will retry.
	}

	go func() {
		err := amqpClient.Consume(ctx, amqp.Handlers{
			OnTransactionRecorded: func(msg *amqp.TransactionRecordedMessage) error {
				return reportWorker.HandleTransactionRecorded(ctx, msg)
			},
			OnPlanApplied: func(msg *amqp.PlanAppliedMessage) error {
				return reportWorker.HandlePlanApplied(ctx, msg)
			},
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	go func() {
		if err := reportWorker.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("Report loop failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
