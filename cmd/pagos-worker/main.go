package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"pagos/internal/amqp"
	"pagos/internal/audit"
	"pagos/internal/cli"
	applog "pagos/internal/log"
	"pagos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Invalid worker configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting pagos-worker")

	// Audit trail destination: Google Sheets when configured, otherwise an
	// in-memory trail that only serves local runs.
	var trail audit.TrailWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := audit.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		trail = client
		logger.Info("Google Sheets audit trail initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		trail = audit.NewMemoryTrail()
		logger.Warn("No GOOGLE_SPREADSHEET_ID provided, audit entries stay in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditWorker := worker.NewAuditWorker(trail)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeDebtEvents(gctx, func(msg *amqp.DebtEventMessage) error {
			return auditWorker.HandleDebtEvent(gctx, msg)
		})
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker")
		return gctx.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
