package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/api"
	"gastos/internal/cli"
	applog "gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting gastos-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	backend := api.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	dashboards := services.NewDashboardService(backend, store)
	reports := services.NewReportsService(backend, store, nil)

	// Google Sheets export is optional.
	var exporter sheets.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	refreshWorker := worker.NewRefreshWorker(dashboards, reports, exporter, cfg.TenantID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Consume refresh events when AMQP is configured; otherwise the
	// periodic tick below is the only refresh source.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient = client
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeRefresh(ctx, refreshWorker.HandleRefresh); err != nil {
				if err != context.Canceled {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP disabled - periodic refresh only")
	}

	// Warm the snapshots once on startup.
	if err := refreshWorker.RefreshTenant(ctx, cfg.TenantID); err != nil {
		logger.Error("Startup refresh failed", "error", err)
		// Don't exit - the backend may come up later.
	}

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	// Export the month once per day when an exporter is configured.
	exportTicker := time.NewTicker(24 * time.Hour)
	defer exportTicker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// With AMQP the tick goes through the queue so every
				// consumer converges on the same refresh pipeline.
				if amqpClient != nil {
					if err := amqpClient.PublishRefresh(ctx, cfg.TenantID, amqp.ReasonScheduled); err != nil {
						logger.Error("Scheduled refresh publish failed", "error", err)
					}
				} else if err := refreshWorker.RefreshTenant(ctx, cfg.TenantID); err != nil {
					logger.Error("Periodic refresh failed", "error", err)
				}
			case <-exportTicker.C:
				if err := refreshWorker.ExportMonthly(ctx, cfg.TenantID, time.Now()); err != nil {
					logger.Error("Monthly export failed", "error", err)
				}
			}
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

	cancel()
	logger.Info("Worker shutdown complete")
}
