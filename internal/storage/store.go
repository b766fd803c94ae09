// Package storage persists ledger snapshots. Two backends exist: a JSON file
// store and a SQLite store; both exchange the full snapshot with the ledger
// so that in-memory state and persisted state never diverge.
package storage

import (
	"context"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// Store is the persistence collaborator of the ledger. Load runs once at
// startup; Save runs synchronously inside every successful mutation.
type Store interface {
	Load(ctx context.Context) (core.Snapshot, error)
	Save(ctx context.Context, snap core.Snapshot) error
	Close() error
}
