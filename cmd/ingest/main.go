package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/powerdata-io/ingest/internal/app"
	"github.com/powerdata-io/ingest/internal/config"
	"github.com/powerdata-io/ingest/internal/observability"
	"github.com/powerdata-io/ingest/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := application.Service.Run(ctx)

	if err := application.Ledger.Flush(); err != nil {
		logger.Error("flush broken fixtures ledger", "error", err)
	}
	if err := application.Close(); err != nil {
		logger.Error("close database", "error", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("shutdown tracing", "error", err)
	}
	if err := stopProfiling(); err != nil {
		logger.Error("stop profiling", "error", err)
	}

	if runErr != nil {
		logger.Error("ingestion run failed", "error", runErr)
		os.Exit(1)
	}

	logger.Info("ingestion run complete",
		"committed", report.Committed,
		"skipped", report.Skipped,
		"broken", report.Broken,
		"rows_inserted", report.Inserted,
	)
}
