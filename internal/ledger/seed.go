package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// Seed describes accounts and categories to ensure exist at startup, typically
// shipped alongside the deployment so a fresh install starts usable.
type Seed struct {
	Accounts   []core.Account  `json:"accounts"`
	Categories []core.Category `json:"categories"`
}

// ApplySeedFile loads a seed file and applies it. Entries that already exist
// are left untouched, so applying the same seed on every boot is safe.
func ApplySeedFile(ctx context.Context, l *Ledger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	return ApplySeed(ctx, l, seed)
}

// ApplySeed creates the seed's accounts and categories, skipping duplicates.
func ApplySeed(ctx context.Context, l *Ledger, seed Seed) error {
	created := 0
	for _, acc := range seed.Accounts {
		if _, err := l.AddAccount(ctx, acc); err != nil {
			if core.IsDuplicate(err) {
				continue
			}
			return fmt.Errorf("seed account %q: %w", acc.Name, err)
		}
		created++
	}
	for _, cat := range seed.Categories {
		if _, err := l.AddCategory(ctx, cat); err != nil {
			if core.IsDuplicate(err) {
				continue
			}
			return fmt.Errorf("seed category %q: %w", cat.Name, err)
		}
		created++
	}

	slog.InfoContext(ctx, "Seed applied",
		"accounts", len(seed.Accounts),
		"categories", len(seed.Categories),
		"created", created)
	return nil
}
