// sensor-worker mirrors ledger state into Home Assistant sensors. It wakes on
// ledger events from the broker and on a fixed interval as a fallback.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/DjTiagoSantos/home-ledger/internal/config"
	"github.com/DjTiagoSantos/home-ledger/internal/events"
	"github.com/DjTiagoSantos/home-ledger/internal/ha"
	applog "github.com/DjTiagoSantos/home-ledger/internal/log"
	"github.com/DjTiagoSantos/home-ledger/internal/storage"
	"github.com/DjTiagoSantos/home-ledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup("sensor-worker", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.HAURL == "" {
		slog.Error("HA_URL is required for the sensor worker")
		os.Exit(1)
	}

	openStore := func() (storage.Store, error) {
		if cfg.DataBackend == "file" {
			return storage.NewFileStore(cfg.LedgerFilePath)
		}
		return storage.NewSQLiteStore(cfg.SQLiteDBPath)
	}

	haClient := ha.NewClient(cfg.HAURL, cfg.HAToken)
	sensors := ha.NewSensorSet(haClient, cfg.SensorPrefix)

	var source worker.EventSource
	if cfg.AMQPURL != "" {
		amqpClient, err := events.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, falling back to interval refresh only", "error", err)
		} else {
			defer amqpClient.Close()
			source = amqpClient
		}
	} else {
		slog.Info("AMQP disabled, refreshing on interval only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewSensorWorker(openStore, sensors, source, cfg.RefreshInterval).WithNotifier(haClient)

	slog.Info("sensor-worker started",
		"ha_url", cfg.HAURL,
		"sensor_prefix", cfg.SensorPrefix,
		"refresh_interval", cfg.RefreshInterval)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("sensor-worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("sensor-worker stopped gracefully")
}
