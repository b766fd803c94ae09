package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// FileStore keeps the ledger snapshot in a single JSON document. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// truncated snapshot behind.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) (core.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.InfoContext(ctx, "No ledger file yet, starting empty", "path", s.path)
		return core.Snapshot{NextTxID: 1, NextRecurringID: 1}, nil
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read ledger file: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode ledger file: %w", err)
	}
	if snap.NextTxID == 0 {
		snap.NextTxID = 1
	}
	if snap.NextRecurringID == 0 {
		snap.NextRecurringID = 1
	}
	return snap, nil
}

func (s *FileStore) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Ledger snapshot saved",
		"path", s.path,
		"accounts", len(snap.Accounts),
		"transactions", len(snap.Transactions))
	return nil
}

func (s *FileStore) Close() error { return nil }
