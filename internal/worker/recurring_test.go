package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
	"github.com/DjTiagoSantos/home-ledger/internal/storage"
)

func newRecurringFixture(t *testing.T, clock func() time.Time) *ledger.Ledger {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewFileStore(t.TempDir() + "/ledger.json")
	require.NoError(t, err)
	l, err := ledger.Open(ctx, store, ledger.Options{Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	initial, err := core.ParseDecimal("2000.00")
	require.NoError(t, err)
	_, err = l.AddAccount(ctx, core.Account{Name: "checking", Kind: core.AccountChecking, InitialBalance: initial})
	require.NoError(t, err)
	_, err = l.AddCategory(ctx, core.Category{Name: "housing", Kind: core.Expense})
	require.NoError(t, err)

	return l
}

func TestProcessDueCreatesTransactionAndAdvancesTemplate(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC) }
	l := newRecurringFixture(t, clock)

	rent, err := core.ParseDecimal("950.00")
	require.NoError(t, err)
	tmpl, err := l.AddRecurring(ctx, core.RecurringTransaction{
		Description: "rent", Amount: rent, Type: core.Expense,
		Account: "checking", Category: "housing",
		Frequency: core.Monthly, StartDate: core.NewDate(2025, 1, 1),
		LastExecution: core.NewDate(2025, 2, 1),
	})
	require.NoError(t, err)

	p := NewRecurringProcessor(l, clock)
	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "1050.00", l.Balance("checking").String())
	txs := l.Transactions(ledger.TxFilter{})
	require.Len(t, txs, 1)
	assert.Equal(t, "rent", txs[0].Description)
	assert.Equal(t, "2025-03-01", txs[0].Date.String())

	updated := l.Recurring(false)
	require.Len(t, updated, 1)
	assert.Equal(t, "2025-03-01", updated[0].LastExecution.String())
	_ = tmpl
}

func TestProcessDueIsIdempotentWithinPeriod(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC) }
	l := newRecurringFixture(t, clock)

	amount, err := core.ParseDecimal("10.00")
	require.NoError(t, err)
	_, err = l.AddRecurring(ctx, core.RecurringTransaction{
		Description: "daily coffee", Amount: amount, Type: core.Expense,
		Account: "checking", Category: "housing",
		Frequency: core.Daily, StartDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	p := NewRecurringProcessor(l, clock)

	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Same day again: nothing fires.
	n, err = p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, l.Transactions(ledger.TxFilter{}), 1)
}

func TestProcessDueSkipsBeforeStartAndAfterEnd(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC) }
	l := newRecurringFixture(t, clock)

	amount, err := core.ParseDecimal("5.00")
	require.NoError(t, err)

	_, err = l.AddRecurring(ctx, core.RecurringTransaction{
		Description: "starts later", Amount: amount, Type: core.Expense,
		Account: "checking", Category: "housing",
		Frequency: core.Daily, StartDate: core.NewDate(2025, 6, 1),
	})
	require.NoError(t, err)

	_, err = l.AddRecurring(ctx, core.RecurringTransaction{
		Description: "already ended", Amount: amount, Type: core.Expense,
		Account: "checking", Category: "housing",
		Frequency: core.Daily, StartDate: core.NewDate(2024, 1, 1),
		EndDate: core.NewDate(2024, 12, 31),
	})
	require.NoError(t, err)

	p := NewRecurringProcessor(l, clock)
	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, l.Transactions(ledger.TxFilter{}))
}

func TestProcessDueContinuesPastBrokenTemplate(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC) }
	l := newRecurringFixture(t, clock)

	amount, err := core.ParseDecimal("5.00")
	require.NoError(t, err)

	// This template's account gets deactivated after registration, so its
	// materialization fails at transaction time.
	_, err = l.AddAccount(ctx, core.Account{Name: "doomed", Kind: core.AccountCash})
	require.NoError(t, err)
	_, err = l.AddRecurring(ctx, core.RecurringTransaction{
		Description: "orphaned", Amount: amount, Type: core.Expense,
		Account: "doomed", Category: "housing",
		Frequency: core.Daily, StartDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)
	require.NoError(t, l.DeactivateAccount(ctx, "doomed"))

	_, err = l.AddRecurring(ctx, core.RecurringTransaction{
		Description: "healthy", Amount: amount, Type: core.Expense,
		Account: "checking", Category: "housing",
		Frequency: core.Daily, StartDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	p := NewRecurringProcessor(l, clock)
	n, err := p.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	txs := l.Transactions(ledger.TxFilter{})
	require.Len(t, txs, 1)
	assert.Equal(t, "healthy", txs[0].Description)
}
