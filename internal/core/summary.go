package core

// MonthlySummary aggregates one calendar month of unpaid-or-dated activity.
type MonthlySummary struct {
	Month    int   `json:"month"`
	Year     int   `json:"year"`
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Balance  Money `json:"balance"`
	Count    int   `json:"count"`
}

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
	Amount   Money  `json:"amount"`
}

// BudgetReport compares a monthly budget target with actual spending.
type BudgetReport struct {
	Budget
	Spent       Money   `json:"spent"`
	Remaining   Money   `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
}

// Snapshot is the full persistent state of the ledger, exchanged with the
// storage collaborator as one unit.
type Snapshot struct {
	Accounts        []Account              `json:"accounts"`
	Categories      []Category             `json:"categories"`
	Transactions    []Transaction          `json:"transactions"`
	Budgets         []Budget               `json:"budgets"`
	Recurring       []RecurringTransaction `json:"recurring"`
	NextTxID        int64                  `json:"next_tx_id"`
	NextRecurringID int64                  `json:"next_recurring_id"`
}
