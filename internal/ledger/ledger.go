// Package ledger holds the authoritative in-memory state of the household
// ledger and is its single writer. Every mutation validates first, applies to
// memory, persists the full snapshot through the storage collaborator, and
// only then reports success; a failed save rolls the in-memory change back so
// callers never observe state the store does not have.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
	"github.com/DjTiagoSantos/home-ledger/internal/events"
	"github.com/DjTiagoSantos/home-ledger/internal/storage"
)

// Publisher receives domain events after a mutation has been persisted.
// Publishing must never block the mutation path.
type Publisher interface {
	Publish(e events.Event)
}

// Options tunes ledger behaviour at construction time.
type Options struct {
	// Bus receives domain events. Nil disables publishing.
	Bus Publisher
	// Clock supplies wall time. Nil means time.Now.
	Clock func() time.Time
	// RestrictDeactivation refuses to deactivate accounts and categories
	// that still have transactions referencing them.
	RestrictDeactivation bool
}

// Ledger is the single-writer, multi-reader ledger state.
type Ledger struct {
	mu    sync.RWMutex
	store storage.Store
	bus   Publisher
	now   func() time.Time

	restrictDeactivation bool

	accounts        map[string]*core.Account
	accountOrder    []string
	categories      map[string]*core.Category
	categoryOrder   []string
	transactions    []core.Transaction
	budgets         []core.Budget
	recurring       []core.RecurringTransaction
	nextTxID        int64
	nextRecurringID int64
}

// Open loads the persisted snapshot from store and builds a ready ledger.
func Open(ctx context.Context, store storage.Store, opts Options) (*Ledger, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	l := &Ledger{
		store:                store,
		bus:                  opts.Bus,
		now:                  now,
		restrictDeactivation: opts.RestrictDeactivation,
		accounts:             make(map[string]*core.Account),
		categories:           make(map[string]*core.Category),
		nextTxID:             snap.NextTxID,
		nextRecurringID:      snap.NextRecurringID,
	}
	if l.nextTxID < 1 {
		l.nextTxID = 1
	}
	if l.nextRecurringID < 1 {
		l.nextRecurringID = 1
	}

	for _, a := range snap.Accounts {
		acc := a
		l.accounts[acc.Name] = &acc
		l.accountOrder = append(l.accountOrder, acc.Name)
	}
	for _, c := range snap.Categories {
		cat := c
		l.categories[cat.Name] = &cat
		l.categoryOrder = append(l.categoryOrder, cat.Name)
	}
	l.transactions = append(l.transactions, snap.Transactions...)
	l.budgets = append(l.budgets, snap.Budgets...)
	l.recurring = append(l.recurring, snap.Recurring...)

	for _, t := range snap.Transactions {
		if t.ID >= l.nextTxID {
			l.nextTxID = t.ID + 1
		}
	}
	for _, r := range snap.Recurring {
		if r.ID >= l.nextRecurringID {
			l.nextRecurringID = r.ID + 1
		}
	}

	return l, nil
}

// Close releases the storage collaborator.
func (l *Ledger) Close() error {
	return l.store.Close()
}

func (l *Ledger) publish(e events.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}

// snapshotLocked copies the current state into a Snapshot. Caller holds at
// least the read lock.
func (l *Ledger) snapshotLocked() core.Snapshot {
	snap := core.Snapshot{
		Accounts:        make([]core.Account, 0, len(l.accountOrder)),
		Categories:      make([]core.Category, 0, len(l.categoryOrder)),
		Transactions:    append([]core.Transaction(nil), l.transactions...),
		Budgets:         append([]core.Budget(nil), l.budgets...),
		Recurring:       append([]core.RecurringTransaction(nil), l.recurring...),
		NextTxID:        l.nextTxID,
		NextRecurringID: l.nextRecurringID,
	}
	for _, name := range l.accountOrder {
		snap.Accounts = append(snap.Accounts, *l.accounts[name])
	}
	for _, name := range l.categoryOrder {
		cat := *l.categories[name]
		if cat.BudgetLimit != nil {
			limit := *cat.BudgetLimit
			cat.BudgetLimit = &limit
		}
		snap.Categories = append(snap.Categories, cat)
	}
	return snap
}

// persistLocked saves the current state. Caller holds the write lock and must
// roll back its in-memory change if this fails.
func (l *Ledger) persistLocked(ctx context.Context) error {
	if err := l.store.Save(ctx, l.snapshotLocked()); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// AddAccount registers a new account. The current balance starts at the
// initial balance and the account is born active.
func (l *Ledger) AddAccount(ctx context.Context, acc core.Account) (core.Account, error) {
	acc.Name = strings.TrimSpace(acc.Name)
	acc.Active = true
	acc.CurrentBalance = acc.InitialBalance
	acc.CreatedAt = l.now().UTC()
	if err := acc.Validate(); err != nil {
		return core.Account{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.accounts[acc.Name]; ok && existing.Active {
		return core.Account{}, &core.DuplicateError{Entity: "account", Key: acc.Name}
	}
	if _, ok := l.accounts[acc.Name]; ok {
		// A deactivated account of the same name is revived with the new
		// parameters rather than shadowed.
		prev := *l.accounts[acc.Name]
		*l.accounts[acc.Name] = acc
		if err := l.persistLocked(ctx); err != nil {
			*l.accounts[acc.Name] = prev
			return core.Account{}, err
		}
	} else {
		l.accounts[acc.Name] = &acc
		l.accountOrder = append(l.accountOrder, acc.Name)
		if err := l.persistLocked(ctx); err != nil {
			delete(l.accounts, acc.Name)
			l.accountOrder = l.accountOrder[:len(l.accountOrder)-1]
			return core.Account{}, err
		}
	}

	slog.InfoContext(ctx, "Account added", "name", acc.Name, "kind", acc.Kind, "initial_balance", acc.InitialBalance)
	l.publish(events.AccountAdded{Account: acc})
	return acc, nil
}

// DeactivateAccount soft-deletes an account. Its transactions and balance
// history remain.
func (l *Ledger) DeactivateAccount(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[name]
	if !ok || !acc.Active {
		return &core.NotFoundError{Entity: "account", Key: name}
	}
	if l.restrictDeactivation && l.accountHasTransactionsLocked(name) {
		return core.Invalidf("account", "%q still has transactions", name)
	}

	acc.Active = false
	if err := l.persistLocked(ctx); err != nil {
		acc.Active = true
		return err
	}
	slog.InfoContext(ctx, "Account deactivated", "name", name)
	return nil
}

func (l *Ledger) accountHasTransactionsLocked(name string) bool {
	for _, t := range l.transactions {
		if t.Account == name {
			return true
		}
	}
	return false
}

// Account returns one account by name.
func (l *Ledger) Account(name string) (core.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[name]
	if !ok {
		return core.Account{}, &core.NotFoundError{Entity: "account", Key: name}
	}
	return *acc, nil
}

// Accounts lists accounts in creation order. Inactive accounts are included
// only on request.
func (l *Ledger) Accounts(includeInactive bool) []core.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Account, 0, len(l.accountOrder))
	for _, name := range l.accountOrder {
		acc := l.accounts[name]
		if !acc.Active && !includeInactive {
			continue
		}
		out = append(out, *acc)
	}
	return out
}

// Balance returns the current balance of an account, zero when the account is
// unknown.
func (l *Ledger) Balance(name string) core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if acc, ok := l.accounts[name]; ok {
		return acc.CurrentBalance
	}
	return core.Money{}
}

// AddCategory registers a new category.
func (l *Ledger) AddCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	cat.Name = strings.TrimSpace(cat.Name)
	cat.Active = true
	cat.CreatedAt = l.now().UTC()
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.categories[cat.Name]; ok && existing.Active {
		return core.Category{}, &core.DuplicateError{Entity: "category", Key: cat.Name}
	}
	if _, ok := l.categories[cat.Name]; ok {
		prev := *l.categories[cat.Name]
		*l.categories[cat.Name] = cat
		if err := l.persistLocked(ctx); err != nil {
			*l.categories[cat.Name] = prev
			return core.Category{}, err
		}
	} else {
		l.categories[cat.Name] = &cat
		l.categoryOrder = append(l.categoryOrder, cat.Name)
		if err := l.persistLocked(ctx); err != nil {
			delete(l.categories, cat.Name)
			l.categoryOrder = l.categoryOrder[:len(l.categoryOrder)-1]
			return core.Category{}, err
		}
	}

	slog.InfoContext(ctx, "Category added", "name", cat.Name, "kind", cat.Kind)
	return cat, nil
}

// DeactivateCategory soft-deletes a category.
func (l *Ledger) DeactivateCategory(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cat, ok := l.categories[name]
	if !ok || !cat.Active {
		return &core.NotFoundError{Entity: "category", Key: name}
	}
	if l.restrictDeactivation {
		for _, t := range l.transactions {
			if t.Category == name {
				return core.Invalidf("category", "%q still has transactions", name)
			}
		}
	}

	cat.Active = false
	if err := l.persistLocked(ctx); err != nil {
		cat.Active = true
		return err
	}
	slog.InfoContext(ctx, "Category deactivated", "name", name)
	return nil
}

// Categories lists categories in creation order.
func (l *Ledger) Categories(includeInactive bool) []core.Category {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Category, 0, len(l.categoryOrder))
	for _, name := range l.categoryOrder {
		cat := l.categories[name]
		if !cat.Active && !includeInactive {
			continue
		}
		out = append(out, *cat)
	}
	return out
}

// checkRefsLocked validates that a transaction's account and category refer to
// active entities and that the category's kind matches the transaction type.
func (l *Ledger) checkRefsLocked(t core.Transaction) error {
	acc, ok := l.accounts[t.Account]
	if !ok || !acc.Active {
		return &core.NotFoundError{Entity: "account", Key: t.Account}
	}
	cat, ok := l.categories[t.Category]
	if !ok || !cat.Active {
		return &core.NotFoundError{Entity: "category", Key: t.Category}
	}
	if cat.Kind != t.Type {
		return core.Invalidf("category", "%q is a %s category, transaction is %s", t.Category, cat.Kind, t.Type)
	}
	return nil
}

// AddTransaction records a transaction and applies its signed delta to the
// account balance. The whole operation, persistence included, succeeds or
// leaves no trace.
func (l *Ledger) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.Date.IsZero() {
		t.Date = core.Today(l.now())
	}
	now := l.now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkRefsLocked(t); err != nil {
		return core.Transaction{}, err
	}

	t.ID = l.nextTxID
	acc := l.accounts[t.Account]
	prevBalance := acc.CurrentBalance

	l.nextTxID++
	acc.CurrentBalance = acc.CurrentBalance.Add(t.Delta())
	l.transactions = append(l.transactions, t)

	if err := l.persistLocked(ctx); err != nil {
		l.nextTxID--
		acc.CurrentBalance = prevBalance
		l.transactions = l.transactions[:len(l.transactions)-1]
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", t.ID, "account", t.Account, "category", t.Category,
		"type", t.Type, "amount", t.Amount)
	l.publish(events.TransactionAdded{Transaction: t})
	return t, nil
}

func (l *Ledger) findTxLocked(id int64) (int, error) {
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			return i, nil
		}
	}
	return 0, &core.NotFoundError{Entity: "transaction", Key: fmt.Sprintf("%d", id)}
}

// Transaction returns one transaction by id.
func (l *Ledger) Transaction(id int64) (core.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, err := l.findTxLocked(id)
	if err != nil {
		return core.Transaction{}, err
	}
	return l.transactions[i], nil
}

// UpdateTransaction replaces a transaction's fields. The old balance effect is
// reversed on the old account and the new effect applied to the new account as
// one atomic step.
func (l *Ledger) UpdateTransaction(ctx context.Context, id int64, updated core.Transaction) (core.Transaction, error) {
	if updated.Date.IsZero() {
		updated.Date = core.Today(l.now())
	}
	updated.ID = id
	updated.UpdatedAt = l.now().UTC()
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findTxLocked(id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := l.checkRefsLocked(updated); err != nil {
		return core.Transaction{}, err
	}

	old := l.transactions[i]
	updated.CreatedAt = old.CreatedAt

	oldAcc := l.accounts[old.Account]
	newAcc := l.accounts[updated.Account]
	prevOldBalance := oldAcc.CurrentBalance
	prevNewBalance := newAcc.CurrentBalance

	oldAcc.CurrentBalance = oldAcc.CurrentBalance.Sub(old.Delta())
	newAcc.CurrentBalance = newAcc.CurrentBalance.Add(updated.Delta())
	l.transactions[i] = updated

	if err := l.persistLocked(ctx); err != nil {
		oldAcc.CurrentBalance = prevOldBalance
		newAcc.CurrentBalance = prevNewBalance
		l.transactions[i] = old
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id, "account", updated.Account)
	l.publish(events.TransactionUpdated{Transaction: updated})
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findTxLocked(id)
	if err != nil {
		return err
	}

	old := l.transactions[i]
	acc, ok := l.accounts[old.Account]
	var prevBalance core.Money
	if ok {
		prevBalance = acc.CurrentBalance
		acc.CurrentBalance = acc.CurrentBalance.Sub(old.Delta())
	}
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)

	if err := l.persistLocked(ctx); err != nil {
		if ok {
			acc.CurrentBalance = prevBalance
		}
		l.transactions = append(l.transactions, core.Transaction{})
		copy(l.transactions[i+1:], l.transactions[i:])
		l.transactions[i] = old
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "account", old.Account)
	l.publish(events.TransactionDeleted{ID: id, Account: old.Account})
	return nil
}

// MarkPaid flips a transaction's paid flag to true. Already-paid transactions
// are a no-op, not an error.
func (l *Ledger) MarkPaid(ctx context.Context, id int64) (core.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findTxLocked(id)
	if err != nil {
		return core.Transaction{}, err
	}
	if l.transactions[i].Paid {
		return l.transactions[i], nil
	}

	old := l.transactions[i]
	l.transactions[i].Paid = true
	l.transactions[i].UpdatedAt = l.now().UTC()

	if err := l.persistLocked(ctx); err != nil {
		l.transactions[i] = old
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction marked paid", "id", id)
	l.publish(events.TransactionPaid{ID: id})
	return l.transactions[i], nil
}

// TxFilter narrows transaction listings. Zero fields match everything.
type TxFilter struct {
	Account  string
	Category string
	Type     core.FlowKind
	From     core.Date
	To       core.Date
	Paid     *bool
	Limit    int
	Offset   int
}

func (f TxFilter) matches(t core.Transaction) bool {
	if f.Account != "" && t.Account != f.Account {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && f.To.Before(t.Date) {
		return false
	}
	if f.Paid != nil && t.Paid != *f.Paid {
		return false
	}
	return true
}

// Transactions lists transactions matching the filter, newest first.
func (l *Ledger) Transactions(f TxFilter) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Transaction, 0, len(l.transactions))
	for _, t := range l.transactions {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date.Time) {
			return out[i].ID > out[j].ID
		}
		return out[j].Date.Before(out[i].Date)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out
}

// ResetPolicy selects how much state Reset clears.
type ResetPolicy string

const (
	// ResetTransactions clears the transaction log and restores every
	// account balance to its initial value. Accounts, categories, budgets
	// and recurring templates survive.
	ResetTransactions ResetPolicy = "transactions"
	// ResetAll wipes the ledger back to empty.
	ResetAll ResetPolicy = "all"
)

// ParseResetPolicy validates a string against the reset policies.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch p := ResetPolicy(s); p {
	case ResetTransactions, ResetAll:
		return p, nil
	}
	return "", core.Invalidf("reset policy", "unknown value %q", s)
}

// Reset clears ledger state according to policy.
func (l *Ledger) Reset(ctx context.Context, policy ResetPolicy) error {
	if _, err := ParseResetPolicy(string(policy)); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.snapshotLocked()

	l.transactions = nil
	l.nextTxID = 1
	switch policy {
	case ResetTransactions:
		for _, acc := range l.accounts {
			acc.CurrentBalance = acc.InitialBalance
		}
	case ResetAll:
		l.accounts = make(map[string]*core.Account)
		l.accountOrder = nil
		l.categories = make(map[string]*core.Category)
		l.categoryOrder = nil
		l.budgets = nil
		l.recurring = nil
		l.nextRecurringID = 1
	}

	if err := l.persistLocked(ctx); err != nil {
		l.restoreLocked(prev)
		return err
	}

	slog.InfoContext(ctx, "Ledger reset", "policy", policy)
	l.publish(events.LedgerReset{})
	return nil
}

// restoreLocked rebuilds in-memory state from a snapshot after a failed save.
func (l *Ledger) restoreLocked(snap core.Snapshot) {
	l.accounts = make(map[string]*core.Account, len(snap.Accounts))
	l.accountOrder = l.accountOrder[:0]
	for _, a := range snap.Accounts {
		acc := a
		l.accounts[acc.Name] = &acc
		l.accountOrder = append(l.accountOrder, acc.Name)
	}
	l.categories = make(map[string]*core.Category, len(snap.Categories))
	l.categoryOrder = l.categoryOrder[:0]
	for _, c := range snap.Categories {
		cat := c
		l.categories[cat.Name] = &cat
		l.categoryOrder = append(l.categoryOrder, cat.Name)
	}
	l.transactions = snap.Transactions
	l.budgets = snap.Budgets
	l.recurring = snap.Recurring
	l.nextTxID = snap.NextTxID
	l.nextRecurringID = snap.NextRecurringID
}

// SetBudget inserts or replaces the budget for (category, month, year).
func (l *Ledger) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.CreatedAt = l.now().UTC()
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cat, ok := l.categories[b.Category]; !ok || !cat.Active {
		return core.Budget{}, &core.NotFoundError{Entity: "category", Key: b.Category}
	}

	replaced := -1
	var prev core.Budget
	for i := range l.budgets {
		if l.budgets[i].Category == b.Category && l.budgets[i].Month == b.Month && l.budgets[i].Year == b.Year {
			replaced = i
			prev = l.budgets[i]
			break
		}
	}
	if replaced >= 0 {
		b.CreatedAt = prev.CreatedAt
		l.budgets[replaced] = b
	} else {
		l.budgets = append(l.budgets, b)
	}

	if err := l.persistLocked(ctx); err != nil {
		if replaced >= 0 {
			l.budgets[replaced] = prev
		} else {
			l.budgets = l.budgets[:len(l.budgets)-1]
		}
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget set", "category", b.Category, "month", b.Month, "year", b.Year, "amount", b.Amount)
	return b, nil
}

// Budgets lists budgets, optionally narrowed to one month.
func (l *Ledger) Budgets(month, year int) []core.Budget {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Budget, 0, len(l.budgets))
	for _, b := range l.budgets {
		if month != 0 && b.Month != month {
			continue
		}
		if year != 0 && b.Year != year {
			continue
		}
		out = append(out, b)
	}
	return out
}

// AddRecurring registers a recurring transaction template.
func (l *Ledger) AddRecurring(ctx context.Context, r core.RecurringTransaction) (core.RecurringTransaction, error) {
	r.Active = true
	r.CreatedAt = l.now().UTC()
	if err := r.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[r.Account]; !ok || !acc.Active {
		return core.RecurringTransaction{}, &core.NotFoundError{Entity: "account", Key: r.Account}
	}
	if cat, ok := l.categories[r.Category]; !ok || !cat.Active {
		return core.RecurringTransaction{}, &core.NotFoundError{Entity: "category", Key: r.Category}
	}

	r.ID = l.nextRecurringID
	l.nextRecurringID++
	l.recurring = append(l.recurring, r)

	if err := l.persistLocked(ctx); err != nil {
		l.nextRecurringID--
		l.recurring = l.recurring[:len(l.recurring)-1]
		return core.RecurringTransaction{}, err
	}

	slog.InfoContext(ctx, "Recurring transaction added", "id", r.ID, "description", r.Description, "frequency", r.Frequency)
	return r, nil
}

func (l *Ledger) findRecurringLocked(id int64) (int, error) {
	for i := range l.recurring {
		if l.recurring[i].ID == id {
			return i, nil
		}
	}
	return 0, &core.NotFoundError{Entity: "recurring transaction", Key: fmt.Sprintf("%d", id)}
}

// Recurring lists recurring templates, active only unless asked otherwise.
func (l *Ledger) Recurring(includeInactive bool) []core.RecurringTransaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.RecurringTransaction, 0, len(l.recurring))
	for _, r := range l.recurring {
		if !r.Active && !includeInactive {
			continue
		}
		out = append(out, r)
	}
	return out
}

// UpdateRecurring replaces a template's fields. The last execution date and
// active flag survive the update.
func (l *Ledger) UpdateRecurring(ctx context.Context, id int64, updated core.RecurringTransaction) (core.RecurringTransaction, error) {
	updated.ID = id
	if err := updated.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findRecurringLocked(id)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	if acc, ok := l.accounts[updated.Account]; !ok || !acc.Active {
		return core.RecurringTransaction{}, &core.NotFoundError{Entity: "account", Key: updated.Account}
	}
	if cat, ok := l.categories[updated.Category]; !ok || !cat.Active {
		return core.RecurringTransaction{}, &core.NotFoundError{Entity: "category", Key: updated.Category}
	}

	old := l.recurring[i]
	updated.LastExecution = old.LastExecution
	updated.Active = old.Active
	updated.CreatedAt = old.CreatedAt
	l.recurring[i] = updated

	if err := l.persistLocked(ctx); err != nil {
		l.recurring[i] = old
		return core.RecurringTransaction{}, err
	}

	slog.InfoContext(ctx, "Recurring transaction updated", "id", id, "description", updated.Description)
	return updated, nil
}

// DeactivateRecurring stops a template from materializing further
// transactions.
func (l *Ledger) DeactivateRecurring(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findRecurringLocked(id)
	if err != nil {
		return err
	}
	if !l.recurring[i].Active {
		return &core.NotFoundError{Entity: "recurring transaction", Key: fmt.Sprintf("%d", id)}
	}

	l.recurring[i].Active = false
	if err := l.persistLocked(ctx); err != nil {
		l.recurring[i].Active = true
		return err
	}
	slog.InfoContext(ctx, "Recurring transaction deactivated", "id", id)
	return nil
}

// MarkRecurringExecuted advances a template's last-execution date after its
// transaction has been materialized.
func (l *Ledger) MarkRecurringExecuted(ctx context.Context, id int64, on core.Date) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.findRecurringLocked(id)
	if err != nil {
		return err
	}

	prev := l.recurring[i].LastExecution
	l.recurring[i].LastExecution = on
	if err := l.persistLocked(ctx); err != nil {
		l.recurring[i].LastExecution = prev
		return err
	}
	return nil
}
