package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
	"github.com/DjTiagoSantos/home-ledger/internal/events"
)

// memStore keeps the snapshot in memory and can be told to fail the next
// save to exercise rollback.
type memStore struct {
	snap     core.Snapshot
	saves    int
	failNext bool
}

func (s *memStore) Load(ctx context.Context) (core.Snapshot, error) {
	if s.snap.NextTxID == 0 {
		return core.Snapshot{NextTxID: 1, NextRecurringID: 1}, nil
	}
	return s.snap, nil
}

func (s *memStore) Save(ctx context.Context, snap core.Snapshot) error {
	if s.failNext {
		s.failNext = false
		return errors.New("disk full")
	}
	s.saves++
	s.snap = snap
	return nil
}

func (s *memStore) Close() error { return nil }

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(e events.Event) { b.published = append(b.published, e) }

func (b *recordingBus) names() []string {
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.Name())
	}
	return out
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newTestLedger(t *testing.T) (*Ledger, *memStore, *recordingBus) {
	t.Helper()
	store := &memStore{}
	bus := &recordingBus{}
	l, err := Open(context.Background(), store, Options{Bus: bus, Clock: fixedClock})
	require.NoError(t, err)
	return l, store, bus
}

func mustAccount(t *testing.T, l *Ledger, name string, initial string) core.Account {
	t.Helper()
	amount, err := core.ParseDecimal(initial)
	require.NoError(t, err)
	acc, err := l.AddAccount(context.Background(), core.Account{
		Name: name, Kind: core.AccountChecking, InitialBalance: amount,
	})
	require.NoError(t, err)
	return acc
}

func mustCategory(t *testing.T, l *Ledger, name string, kind core.FlowKind) core.Category {
	t.Helper()
	cat, err := l.AddCategory(context.Background(), core.Category{Name: name, Kind: kind})
	require.NoError(t, err)
	return cat
}

func mustTx(t *testing.T, l *Ledger, tx core.Transaction) core.Transaction {
	t.Helper()
	got, err := l.AddTransaction(context.Background(), tx)
	require.NoError(t, err)
	return got
}

func money(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseDecimal(s)
	require.NoError(t, err)
	return m
}

func TestExpenseReducesBalance(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)

	mustTx(t, l, core.Transaction{
		Description: "weekly shop", Amount: money(t, "100.50"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})

	assert.Equal(t, "899.50", l.Balance("checking").String())
}

func TestIncomeIncreasesBalance(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "100.00")
	mustCategory(t, l, "salary", core.Income)

	mustTx(t, l, core.Transaction{
		Description: "march salary", Amount: money(t, "2500.00"),
		Type: core.Income, Account: "checking", Category: "salary",
	})

	assert.Equal(t, "2600.00", l.Balance("checking").String())
}

func TestBalanceEqualsInitialPlusDeltas(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "500.00")
	mustCategory(t, l, "groceries", core.Expense)
	mustCategory(t, l, "salary", core.Income)

	mustTx(t, l, core.Transaction{Description: "a", Amount: money(t, "120.00"), Type: core.Expense, Account: "checking", Category: "groceries"})
	mustTx(t, l, core.Transaction{Description: "b", Amount: money(t, "30.25"), Type: core.Expense, Account: "checking", Category: "groceries"})
	mustTx(t, l, core.Transaction{Description: "c", Amount: money(t, "1000.00"), Type: core.Income, Account: "checking", Category: "salary"})

	acc, err := l.Account("checking")
	require.NoError(t, err)

	expected := acc.InitialBalance
	for _, tx := range l.Transactions(TxFilter{Account: "checking"}) {
		expected = expected.Add(tx.Delta())
	}
	assert.Equal(t, expected, acc.CurrentBalance)
	assert.Equal(t, "1349.75", acc.CurrentBalance.String())
}

func TestDuplicateActiveAccountRejected(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "0.00")

	_, err := l.AddAccount(context.Background(), core.Account{Name: "checking", Kind: core.AccountSavings})
	require.Error(t, err)
	assert.True(t, core.IsDuplicate(err))
}

func TestDeactivatedAccountNameCanBeReused(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "10.00")
	require.NoError(t, l.DeactivateAccount(context.Background(), "checking"))

	acc, err := l.AddAccount(context.Background(), core.Account{
		Name: "checking", Kind: core.AccountSavings, InitialBalance: money(t, "250.00"),
	})
	require.NoError(t, err)
	assert.True(t, acc.Active)
	assert.Equal(t, "250.00", acc.CurrentBalance.String())
}

func TestUnknownReferencesFailClosed(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "100.00")
	mustCategory(t, l, "groceries", core.Expense)

	_, err := l.AddTransaction(context.Background(), core.Transaction{
		Description: "x", Amount: money(t, "5.00"), Type: core.Expense,
		Account: "nope", Category: "groceries",
	})
	assert.True(t, core.IsNotFound(err))

	_, err = l.AddTransaction(context.Background(), core.Transaction{
		Description: "x", Amount: money(t, "5.00"), Type: core.Expense,
		Account: "checking", Category: "nope",
	})
	assert.True(t, core.IsNotFound(err))

	assert.Equal(t, "100.00", l.Balance("checking").String())
	assert.Empty(t, l.Transactions(TxFilter{}))
}

func TestCategoryKindMustMatchTransactionType(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "100.00")
	mustCategory(t, l, "salary", core.Income)

	_, err := l.AddTransaction(context.Background(), core.Transaction{
		Description: "mislabeled", Amount: money(t, "5.00"), Type: core.Expense,
		Account: "checking", Category: "salary",
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestUpdateTransactionReversesOldEffect(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustAccount(t, l, "cash", "200.00")
	mustCategory(t, l, "groceries", core.Expense)

	tx := mustTx(t, l, core.Transaction{
		Description: "shop", Amount: money(t, "100.00"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})
	require.Equal(t, "900.00", l.Balance("checking").String())

	// Move the expense to the cash account with a different amount.
	_, err := l.UpdateTransaction(context.Background(), tx.ID, core.Transaction{
		Description: "shop", Amount: money(t, "60.00"),
		Type: core.Expense, Account: "cash", Category: "groceries",
		Date: tx.Date,
	})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", l.Balance("checking").String())
	assert.Equal(t, "140.00", l.Balance("cash").String())
}

func TestDeleteTransactionRestoresBalance(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)

	tx := mustTx(t, l, core.Transaction{
		Description: "shop", Amount: money(t, "100.50"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})
	require.NoError(t, l.DeleteTransaction(context.Background(), tx.ID))

	assert.Equal(t, "1000.00", l.Balance("checking").String())
	_, err := l.Transaction(tx.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	l, _, bus := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "utilities", core.Expense)

	tx := mustTx(t, l, core.Transaction{
		Description: "electricity", Amount: money(t, "72.30"),
		Type: core.Expense, Account: "checking", Category: "utilities",
		DueDate: core.NewDate(2025, 4, 5),
	})

	before := len(bus.published)
	paid, err := l.MarkPaid(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	again, err := l.MarkPaid(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.True(t, again.Paid)

	// Only the first call publishes, and paying does not touch the balance
	// again.
	assert.Len(t, bus.published, before+1)
	assert.Equal(t, "927.70", l.Balance("checking").String())
}

func TestResetTransactionsRestoresInitialBalances(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)
	mustTx(t, l, core.Transaction{Description: "a", Amount: money(t, "100.00"), Type: core.Expense, Account: "checking", Category: "groceries"})

	require.NoError(t, l.Reset(context.Background(), ResetTransactions))

	assert.Equal(t, "1000.00", l.Balance("checking").String())
	assert.Empty(t, l.Transactions(TxFilter{}))
	assert.Len(t, l.Accounts(false), 1)
	assert.Len(t, l.Categories(false), 1)

	// IDs restart from 1.
	tx := mustTx(t, l, core.Transaction{Description: "b", Amount: money(t, "1.00"), Type: core.Expense, Account: "checking", Category: "groceries"})
	assert.Equal(t, int64(1), tx.ID)
}

func TestResetAllWipesEverything(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)
	mustTx(t, l, core.Transaction{Description: "a", Amount: money(t, "100.00"), Type: core.Expense, Account: "checking", Category: "groceries"})

	require.NoError(t, l.Reset(context.Background(), ResetAll))

	assert.Empty(t, l.Accounts(true))
	assert.Empty(t, l.Categories(true))
	assert.Empty(t, l.Transactions(TxFilter{}))
	assert.Equal(t, "0.00", l.Balance("checking").String())
}

func TestResetRejectsUnknownPolicy(t *testing.T) {
	l, _, _ := newTestLedger(t)
	err := l.Reset(context.Background(), ResetPolicy("half"))
	assert.True(t, core.IsValidation(err))
}

func TestFailedSaveRollsBackTransaction(t *testing.T) {
	l, store, bus := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)

	store.failNext = true
	eventsBefore := len(bus.published)
	_, err := l.AddTransaction(context.Background(), core.Transaction{
		Description: "lost", Amount: money(t, "100.00"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})
	require.Error(t, err)

	assert.Equal(t, "1000.00", l.Balance("checking").String())
	assert.Empty(t, l.Transactions(TxFilter{}))
	assert.Len(t, bus.published, eventsBefore)

	// Next add succeeds and reuses the id.
	tx := mustTx(t, l, core.Transaction{
		Description: "retried", Amount: money(t, "100.00"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})
	assert.Equal(t, int64(1), tx.ID)
}

func TestFailedSaveRollsBackAccount(t *testing.T) {
	l, store, _ := newTestLedger(t)

	store.failNext = true
	_, err := l.AddAccount(context.Background(), core.Account{Name: "checking", Kind: core.AccountChecking})
	require.Error(t, err)
	assert.Empty(t, l.Accounts(true))
}

func TestEventsPublishedAfterPersist(t *testing.T) {
	l, _, bus := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)
	tx := mustTx(t, l, core.Transaction{
		Description: "shop", Amount: money(t, "10.00"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})
	require.NoError(t, l.DeleteTransaction(context.Background(), tx.ID))

	assert.Equal(t, []string{"account_added", "transaction_added", "transaction_deleted"}, bus.names())
}

func TestTransactionFilters(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustAccount(t, l, "cash", "100.00")
	mustCategory(t, l, "groceries", core.Expense)
	mustCategory(t, l, "salary", core.Income)

	mustTx(t, l, core.Transaction{Description: "a", Amount: money(t, "10.00"), Type: core.Expense, Account: "checking", Category: "groceries", Date: core.NewDate(2025, 3, 1)})
	mustTx(t, l, core.Transaction{Description: "b", Amount: money(t, "20.00"), Type: core.Expense, Account: "cash", Category: "groceries", Date: core.NewDate(2025, 3, 5)})
	mustTx(t, l, core.Transaction{Description: "c", Amount: money(t, "30.00"), Type: core.Income, Account: "checking", Category: "salary", Date: core.NewDate(2025, 4, 1)})

	assert.Len(t, l.Transactions(TxFilter{Account: "checking"}), 2)
	assert.Len(t, l.Transactions(TxFilter{Category: "salary"}), 1)
	assert.Len(t, l.Transactions(TxFilter{Type: core.Expense}), 2)
	assert.Len(t, l.Transactions(TxFilter{From: core.NewDate(2025, 3, 2), To: core.NewDate(2025, 3, 31)}), 1)

	// Newest first, pagination applies after sorting.
	all := l.Transactions(TxFilter{})
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Description)

	page := l.Transactions(TxFilter{Limit: 1, Offset: 1})
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Description)

	assert.Empty(t, l.Transactions(TxFilter{Offset: 10}))
}

func TestDeactivatedAccountRejectsNewTransactions(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)
	require.NoError(t, l.DeactivateAccount(context.Background(), "checking"))

	_, err := l.AddTransaction(context.Background(), core.Transaction{
		Description: "late", Amount: money(t, "5.00"),
		Type: core.Expense, Account: "checking", Category: "groceries",
	})
	assert.True(t, core.IsNotFound(err))
}

func TestRestrictDeactivationRefusesAccountsWithHistory(t *testing.T) {
	store := &memStore{}
	l, err := Open(context.Background(), store, Options{Clock: fixedClock, RestrictDeactivation: true})
	require.NoError(t, err)

	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)
	mustTx(t, l, core.Transaction{Description: "a", Amount: money(t, "1.00"), Type: core.Expense, Account: "checking", Category: "groceries"})

	err = l.DeactivateAccount(context.Background(), "checking")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
	err = l.DeactivateCategory(context.Background(), "groceries")
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestSetBudgetUpserts(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustCategory(t, l, "groceries", core.Expense)

	_, err := l.SetBudget(context.Background(), core.Budget{Category: "groceries", Month: 3, Year: 2025, Amount: money(t, "400.00")})
	require.NoError(t, err)
	_, err = l.SetBudget(context.Background(), core.Budget{Category: "groceries", Month: 3, Year: 2025, Amount: money(t, "450.00")})
	require.NoError(t, err)

	budgets := l.Budgets(3, 2025)
	require.Len(t, budgets, 1)
	assert.Equal(t, "450.00", budgets[0].Amount.String())

	_, err = l.SetBudget(context.Background(), core.Budget{Category: "unknown", Month: 3, Year: 2025, Amount: money(t, "1.00")})
	assert.True(t, core.IsNotFound(err))
}

func TestRecurringLifecycle(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "housing", core.Expense)

	r, err := l.AddRecurring(context.Background(), core.RecurringTransaction{
		Description: "rent", Amount: money(t, "950.00"),
		Type: core.Expense, Account: "checking", Category: "housing",
		Frequency: core.Monthly, StartDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)
	assert.True(t, r.Active)

	require.NoError(t, l.MarkRecurringExecuted(context.Background(), r.ID, core.NewDate(2025, 3, 1)))
	list := l.Recurring(false)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-03-01", list[0].LastExecution.String())

	require.NoError(t, l.DeactivateRecurring(context.Background(), r.ID))
	assert.Empty(t, l.Recurring(false))
	assert.Len(t, l.Recurring(true), 1)
}

func TestUpdateRecurringKeepsExecutionState(t *testing.T) {
	l, _, _ := newTestLedger(t)
	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "housing", core.Expense)

	r, err := l.AddRecurring(context.Background(), core.RecurringTransaction{
		Description: "rent", Amount: money(t, "950.00"),
		Type: core.Expense, Account: "checking", Category: "housing",
		Frequency: core.Monthly, StartDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)
	require.NoError(t, l.MarkRecurringExecuted(context.Background(), r.ID, core.NewDate(2025, 3, 1)))

	updated, err := l.UpdateRecurring(context.Background(), r.ID, core.RecurringTransaction{
		Description: "rent (raised)", Amount: money(t, "1000.00"),
		Type: core.Expense, Account: "checking", Category: "housing",
		Frequency: core.Monthly, StartDate: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, "rent (raised)", updated.Description)
	assert.Equal(t, "1000.00", updated.Amount.String())
	assert.Equal(t, "2025-03-01", updated.LastExecution.String())
	assert.True(t, updated.Active)

	_, err = l.UpdateRecurring(context.Background(), 99, updated)
	assert.True(t, core.IsNotFound(err))
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	l, err := Open(ctx, store, Options{Clock: fixedClock})
	require.NoError(t, err)

	mustAccount(t, l, "checking", "1000.00")
	mustCategory(t, l, "groceries", core.Expense)
	mustTx(t, l, core.Transaction{Description: "shop", Amount: money(t, "100.50"), Type: core.Expense, Account: "checking", Category: "groceries"})

	reopened, err := Open(ctx, store, Options{Clock: fixedClock})
	require.NoError(t, err)

	assert.Equal(t, "899.50", reopened.Balance("checking").String())
	require.Len(t, reopened.Transactions(TxFilter{}), 1)

	// ID sequence continues where the first instance left off.
	tx := mustTx(t, reopened, core.Transaction{Description: "more", Amount: money(t, "1.00"), Type: core.Expense, Account: "checking", Category: "groceries"})
	assert.Equal(t, int64(2), tx.ID)
}
