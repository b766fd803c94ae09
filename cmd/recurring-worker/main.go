// recurring-worker materializes due recurring templates into real
// transactions on a cron schedule.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/DjTiagoSantos/home-ledger/internal/config"
	"github.com/DjTiagoSantos/home-ledger/internal/events"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
	applog "github.com/DjTiagoSantos/home-ledger/internal/log"
	"github.com/DjTiagoSantos/home-ledger/internal/storage"
	"github.com/DjTiagoSantos/home-ledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup("recurring-worker", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	defer bus.Close()

	if cfg.AMQPURL != "" {
		amqpClient, err := events.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, created transactions will not be broadcast", "error", err)
		} else {
			defer amqpClient.Close()
			go func() {
				if err := amqpClient.Forward(ctx, bus); err != nil && ctx.Err() == nil {
					slog.Error("Event forwarding stopped", "error", err)
				}
			}()
		}
	}

	// Each run opens the store fresh so the worker always acts on the state
	// the API process last persisted.
	runOnce := func() {
		store, err := openStore(cfg)
		if err != nil {
			slog.Error("Failed to open storage", "error", err)
			return
		}
		defer store.Close()

		l, err := ledger.Open(ctx, store, ledger.Options{Bus: bus})
		if err != nil {
			slog.Error("Failed to open ledger", "error", err)
			return
		}

		processor := worker.NewRecurringProcessor(l, nil)
		count, err := processor.ProcessDue(ctx)
		if err != nil {
			slog.Error("Recurring processing failed", "error", err)
			return
		}
		slog.Info("Recurring processing run complete", "transactions_created", count)
	}

	slog.Info("recurring-worker started", "schedule", cfg.RecurringSchedule, "backend", cfg.DataBackend)

	// Catch up on anything that came due while the worker was down.
	runOnce()

	c := cron.New()
	if _, err := c.AddFunc(cfg.RecurringSchedule, runOnce); err != nil {
		slog.Error("Failed to schedule recurring processing", "error", err, "schedule", cfg.RecurringSchedule)
		os.Exit(1)
	}
	c.Start()

	<-ctx.Done()
	cronCtx := c.Stop()
	<-cronCtx.Done()
	slog.Info("recurring-worker stopped gracefully")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DataBackend == "file" {
		return storage.NewFileStore(cfg.LedgerFilePath)
	}
	return storage.NewSQLiteStore(cfg.SQLiteDBPath)
}
