package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjTiagoSantos/home-ledger/internal/events"
	"github.com/DjTiagoSantos/home-ledger/internal/ha"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
	"github.com/DjTiagoSantos/home-ledger/internal/storage"
)

// EventSource delivers ledger event envelopes, typically from the broker.
type EventSource interface {
	Consume(ctx context.Context, handler func(events.Envelope) error) error
}

// SensorWorker mirrors ledger state into Home Assistant. It refreshes the
// sensors whenever a ledger event arrives and on a fixed interval as a
// fallback, reading the persisted snapshot fresh each time so it never holds
// stale state.
type SensorWorker struct {
	openStore func() (storage.Store, error)
	sensors   *ha.SensorSet
	notifier  Notifier
	source    EventSource
	interval  time.Duration

	// refresh requests are coalesced: one pending trigger at most.
	trigger chan struct{}
}

// Notifier posts user-facing notifications; *ha.Client satisfies it.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

func NewSensorWorker(openStore func() (storage.Store, error), sensors *ha.SensorSet, source EventSource, interval time.Duration) *SensorWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SensorWorker{
		openStore: openStore,
		sensors:   sensors,
		source:    source,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
	}
}

// WithNotifier enables a Home Assistant notification for every new
// transaction.
func (w *SensorWorker) WithNotifier(n Notifier) *SensorWorker {
	w.notifier = n
	return w
}

// Run blocks until the context is cancelled. The event consumer runs in its
// own goroutine; the main loop owns the actual sensor refreshes.
func (w *SensorWorker) Run(ctx context.Context) error {
	if w.source != nil {
		go func() {
			err := w.source.Consume(ctx, func(env events.Envelope) error {
				slog.InfoContext(ctx, "Ledger event received", "event", env.Name, "envelope_id", env.ID)
				w.notify(ctx, env)
				w.requestRefresh()
				return nil
			})
			if err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Event consumption stopped", "error", err)
			}
		}()
	}

	// Push an initial state before the first tick.
	if err := w.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Initial sensor refresh failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.WarnContext(ctx, "Scheduled sensor refresh failed", "error", err)
			}
		case <-w.trigger:
			if err := w.Refresh(ctx); err != nil {
				slog.WarnContext(ctx, "Event-driven sensor refresh failed", "error", err)
			}
		}
	}
}

// notify posts a Home Assistant notification for freshly recorded
// transactions. Failures only log: the event is still acked and sensors
// still refresh.
func (w *SensorWorker) notify(ctx context.Context, env events.Envelope) {
	if w.notifier == nil || env.Name != "transaction_added" {
		return
	}

	desc, _ := env.Payload["description"].(string)
	amount, _ := env.Payload["amount"].(string)
	kind, _ := env.Payload["type"].(string)
	msg := fmt.Sprintf("%s: %s (%s)", desc, amount, kind)
	if err := w.notifier.Notify(ctx, "New transaction", msg); err != nil {
		slog.WarnContext(ctx, "Notification failed", "error", err)
	}
}

func (w *SensorWorker) requestRefresh() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Refresh loads the current snapshot and pushes all sensors.
func (w *SensorWorker) Refresh(ctx context.Context) error {
	store, err := w.openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	l, err := ledger.Open(ctx, store, ledger.Options{})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	return w.sensors.Refresh(ctx, l)
}
