package ledger

import (
	"sort"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// MonthlySummary aggregates income and expenses for one calendar month.
// Transactions are bucketed by their effective date, the due date when one is
// set. Paid transactions with a due date are settled history and excluded;
// everything else counts. Month or year zero defaults to the current month.
func (l *Ledger) MonthlySummary(month, year int) core.MonthlySummary {
	today := core.Today(l.now())
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := core.MonthlySummary{Month: month, Year: year}
	for _, t := range l.transactions {
		if !t.DueDate.IsZero() && t.Paid {
			continue
		}
		if !t.EffectiveDate().InMonth(month, year) {
			continue
		}
		sum.Count++
		switch t.Type {
		case core.Income:
			sum.Income = sum.Income.Add(t.Amount)
		case core.Expense:
			sum.Expenses = sum.Expenses.Add(t.Amount)
		}
	}
	sum.Balance = sum.Income.Sub(sum.Expenses)
	return sum
}

// DueTransactions lists unpaid due-dated transactions ascending by due date.
// A non-zero asOf date keeps only transactions due on or after it.
func (l *Ledger) DueTransactions(asOf core.Date) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Transaction, 0)
	for _, t := range l.transactions {
		if t.Paid || t.DueDate.IsZero() {
			continue
		}
		if !asOf.IsZero() && t.DueDate.Before(asOf) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// ExpensesByCategory totals expense transactions per category over an optional
// date range (on the transaction date), largest first.
func (l *Ledger) ExpensesByCategory(from, to core.Date) []core.CategoryAmount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := make(map[string]core.Money)
	for _, t := range l.transactions {
		if t.Type != core.Expense {
			continue
		}
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && to.Before(t.Date) {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		ca := core.CategoryAmount{Category: name, Amount: amount}
		if cat, ok := l.categories[name]; ok {
			ca.Color = cat.Color
		}
		out = append(out, ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents == out[j].Amount.Cents {
			return out[i].Category < out[j].Category
		}
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// TotalBalance sums the current balances of all active accounts.
func (l *Ledger) TotalBalance() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total core.Money
	for _, name := range l.accountOrder {
		if acc := l.accounts[name]; acc.Active {
			total = total.Add(acc.CurrentBalance)
		}
	}
	return total
}

// BudgetStatus compares each budget of the month against the expenses filed
// under its category, bucketed by effective date. Month or year zero defaults
// to the current month.
func (l *Ledger) BudgetStatus(month, year int) []core.BudgetReport {
	today := core.Today(l.now())
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.BudgetReport, 0)
	for _, b := range l.budgets {
		if b.Month != month || b.Year != year {
			continue
		}

		var spent core.Money
		for _, t := range l.transactions {
			if t.Type != core.Expense || t.Category != b.Category {
				continue
			}
			if !t.EffectiveDate().InMonth(month, year) {
				continue
			}
			spent = spent.Add(t.Amount)
		}

		report := core.BudgetReport{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
		}
		if b.Amount.Cents > 0 {
			report.PercentUsed = float64(spent.Cents) / float64(b.Amount.Cents) * 100
		}
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
