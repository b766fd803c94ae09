// ledgerd serves the household ledger REST API and publishes ledger events to
// the message broker.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/DjTiagoSantos/home-ledger/internal/config"
	"github.com/DjTiagoSantos/home-ledger/internal/events"
	apphttp "github.com/DjTiagoSantos/home-ledger/internal/http"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
	applog "github.com/DjTiagoSantos/home-ledger/internal/log"
	"github.com/DjTiagoSantos/home-ledger/internal/storage"
)

func main() {
	// Load .env for local development; in containers the environment is the
	// source of truth.
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup("ledgerd", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	bus := events.NewBus()
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := ledger.Open(ctx, store, ledger.Options{
		Bus:                  bus,
		RestrictDeactivation: cfg.RestrictDeactivation,
	})
	if err != nil {
		slog.Error("Failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer l.Close()

	if cfg.SeedFile != "" {
		if err := ledger.ApplySeedFile(ctx, l, cfg.SeedFile); err != nil {
			slog.Error("Failed to apply seed file", "error", err, "path", cfg.SeedFile)
			os.Exit(1)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := events.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, events stay in-process only", "error", err)
		} else {
			defer amqpClient.Close()
			g.Go(func() error {
				if err := amqpClient.Forward(ctx, bus); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			})
			slog.Info("Forwarding ledger events to broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		slog.Info("AMQP disabled, events stay in-process only")
	}

	srv := apphttp.NewServer(cfg.Port, l)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("ledgerd started", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Error("ledgerd stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("ledgerd stopped gracefully")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DataBackend == "file" {
		return storage.NewFileStore(cfg.LedgerFilePath)
	}
	return storage.NewSQLiteStore(cfg.SQLiteDBPath)
}
