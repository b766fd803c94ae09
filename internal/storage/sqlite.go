package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// SQLiteStore persists the ledger snapshot in a relational schema. A save
// replaces the full row set inside one transaction; at personal-ledger scale
// (thousands of records) this keeps the store trivially consistent with the
// in-memory state.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (core.Snapshot, error) {
	snap := core.Snapshot{NextTxID: 1, NextRecurringID: 1}

	if err := s.loadAccounts(ctx, &snap); err != nil {
		return core.Snapshot{}, err
	}
	if err := s.loadCategories(ctx, &snap); err != nil {
		return core.Snapshot{}, err
	}
	if err := s.loadTransactions(ctx, &snap); err != nil {
		return core.Snapshot{}, err
	}
	if err := s.loadBudgets(ctx, &snap); err != nil {
		return core.Snapshot{}, err
	}
	if err := s.loadRecurring(ctx, &snap); err != nil {
		return core.Snapshot{}, err
	}
	if err := s.loadMeta(ctx, &snap); err != nil {
		return core.Snapshot{}, err
	}

	slog.InfoContext(ctx, "Ledger loaded from SQLite",
		"accounts", len(snap.Accounts),
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions))
	return snap, nil
}

func (s *SQLiteStore) loadAccounts(ctx context.Context, snap *core.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, initial_balance_cents, current_balance_cents, active, created_at
		FROM accounts ORDER BY created_at, name`)
	if err != nil {
		return fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.Name, &a.Kind, &a.InitialBalance.Cents, &a.CurrentBalance.Cents, &a.Active, &a.CreatedAt); err != nil {
			return fmt.Errorf("scan account: %w", err)
		}
		snap.Accounts = append(snap.Accounts, a)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadCategories(ctx context.Context, snap *core.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, budget_limit_cents, color, icon, active, created_at
		FROM categories ORDER BY created_at, name`)
	if err != nil {
		return fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c core.Category
		var limit sql.NullInt64
		if err := rows.Scan(&c.Name, &c.Kind, &limit, &c.Color, &c.Icon, &c.Active, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		if limit.Valid {
			c.BudgetLimit = &core.Money{Cents: limit.Int64}
		}
		snap.Categories = append(snap.Categories, c)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context, snap *core.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, type, account, category,
		       tx_date, due_date, paid, notes, created_at, updated_at
		FROM transactions ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t core.Transaction
		var txDate string
		var dueDate sql.NullString
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.Account, &t.Category,
			&txDate, &dueDate, &t.Paid, &t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(txDate); err != nil {
			return fmt.Errorf("transaction %d date: %w", t.ID, err)
		}
		if dueDate.Valid && dueDate.String != "" {
			if t.DueDate, err = core.ParseDate(dueDate.String); err != nil {
				return fmt.Errorf("transaction %d due date: %w", t.ID, err)
			}
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadBudgets(ctx context.Context, snap *core.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, month, year, amount_cents, created_at
		FROM budgets ORDER BY year, month, category`)
	if err != nil {
		return fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.Category, &b.Month, &b.Year, &b.Amount.Cents, &b.CreatedAt); err != nil {
			return fmt.Errorf("scan budget: %w", err)
		}
		snap.Budgets = append(snap.Budgets, b)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadRecurring(ctx context.Context, snap *core.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, type, account, category,
		       frequency, start_date, end_date, last_execution, active, created_at
		FROM recurring_transactions ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query recurring transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r core.RecurringTransaction
		var startDate string
		var endDate, lastExec sql.NullString
		if err := rows.Scan(&r.ID, &r.Description, &r.Amount.Cents, &r.Type, &r.Account, &r.Category,
			&r.Frequency, &startDate, &endDate, &lastExec, &r.Active, &r.CreatedAt); err != nil {
			return fmt.Errorf("scan recurring transaction: %w", err)
		}
		if r.StartDate, err = core.ParseDate(startDate); err != nil {
			return fmt.Errorf("recurring %d start date: %w", r.ID, err)
		}
		if endDate.Valid && endDate.String != "" {
			if r.EndDate, err = core.ParseDate(endDate.String); err != nil {
				return fmt.Errorf("recurring %d end date: %w", r.ID, err)
			}
		}
		if lastExec.Valid && lastExec.String != "" {
			if r.LastExecution, err = core.ParseDate(lastExec.String); err != nil {
				return fmt.Errorf("recurring %d last execution: %w", r.ID, err)
			}
		}
		snap.Recurring = append(snap.Recurring, r)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadMeta(ctx context.Context, snap *core.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM ledger_meta`)
	if err != nil {
		return fmt.Errorf("query ledger meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan ledger meta: %w", err)
		}
		switch key {
		case "next_tx_id":
			snap.NextTxID = value
		case "next_recurring_id":
			snap.NextRecurringID = value
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "budgets", "recurring_transactions", "categories", "accounts", "ledger_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, a := range snap.Accounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (name, kind, initial_balance_cents, current_balance_cents, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.Name, string(a.Kind), a.InitialBalance.Cents, a.CurrentBalance.Cents, a.Active, a.CreatedAt); err != nil {
			return fmt.Errorf("insert account %q: %w", a.Name, err)
		}
	}

	for _, c := range snap.Categories {
		var limit sql.NullInt64
		if c.BudgetLimit != nil {
			limit = sql.NullInt64{Int64: c.BudgetLimit.Cents, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, kind, budget_limit_cents, color, icon, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Name, string(c.Kind), limit, c.Color, c.Icon, c.Active, c.CreatedAt); err != nil {
			return fmt.Errorf("insert category %q: %w", c.Name, err)
		}
	}

	for _, t := range snap.Transactions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, description, amount_cents, type, account, category,
			                          tx_date, due_date, paid, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Description, t.Amount.Cents, string(t.Type), t.Account, t.Category,
			t.Date.String(), nullableDate(t.DueDate), t.Paid, t.Notes, t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	for _, b := range snap.Budgets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (category, month, year, amount_cents, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			b.Category, b.Month, b.Year, b.Amount.Cents, b.CreatedAt); err != nil {
			return fmt.Errorf("insert budget %s %d/%d: %w", b.Category, b.Month, b.Year, err)
		}
	}

	for _, r := range snap.Recurring {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recurring_transactions (id, description, amount_cents, type, account, category,
			                                    frequency, start_date, end_date, last_execution, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Description, r.Amount.Cents, string(r.Type), r.Account, r.Category,
			string(r.Frequency), r.StartDate.String(), nullableDate(r.EndDate), nullableDate(r.LastExecution),
			r.Active, r.CreatedAt); err != nil {
			return fmt.Errorf("insert recurring transaction %d: %w", r.ID, err)
		}
	}

	for key, value := range map[string]int64{
		"next_tx_id":        snap.NextTxID,
		"next_recurring_id": snap.NextRecurringID,
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ledger_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func nullableDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
