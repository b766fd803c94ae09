package core

import (
	"strings"
	"time"
)

// AccountKind is the closed set of account types.
type AccountKind string

const (
	AccountChecking   AccountKind = "checking"
	AccountSavings    AccountKind = "savings"
	AccountInvestment AccountKind = "investment"
	AccountCreditCard AccountKind = "credit-card"
	AccountCash       AccountKind = "cash"
)

// ParseAccountKind validates a string against the account-kind enumeration.
func ParseAccountKind(s string) (AccountKind, error) {
	switch k := AccountKind(s); k {
	case AccountChecking, AccountSavings, AccountInvestment, AccountCreditCard, AccountCash:
		return k, nil
	}
	return "", Invalidf("account kind", "unknown value %q", s)
}

// FlowKind classifies both transactions and categories as money in or out.
type FlowKind string

const (
	Income  FlowKind = "income"
	Expense FlowKind = "expense"
)

// ParseFlowKind validates a string against the income/expense enumeration.
func ParseFlowKind(s string) (FlowKind, error) {
	switch k := FlowKind(s); k {
	case Income, Expense:
		return k, nil
	}
	return "", Invalidf("type", "unknown value %q", s)
}

// Frequency is the repetition schedule of a recurring transaction.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ParseFrequency validates a string against the frequency enumeration.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case Daily, Weekly, Monthly, Yearly:
		return f, nil
	}
	return "", Invalidf("frequency", "unknown value %q", s)
}

// Account is a place money lives. Its current balance always equals the
// initial balance plus the signed sum of every transaction referencing it.
type Account struct {
	Name           string      `json:"name"`
	Kind           AccountKind `json:"kind"`
	InitialBalance Money       `json:"initial_balance"`
	CurrentBalance Money       `json:"current_balance"`
	Active         bool        `json:"active"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return Invalidf("account name", "must not be empty")
	}
	if _, err := ParseAccountKind(string(a.Kind)); err != nil {
		return err
	}
	return nil
}

// Category labels transactions. Kind must agree with the type of every
// transaction filed under it.
type Category struct {
	Name        string    `json:"name"`
	Kind        FlowKind  `json:"kind"`
	BudgetLimit *Money    `json:"budget_limit,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalidf("category name", "must not be empty")
	}
	if _, err := ParseFlowKind(string(c.Kind)); err != nil {
		return err
	}
	return nil
}

// Transaction is a single ledger entry. Amount is always positive; the sign
// of its balance effect is carried by Type.
type Transaction struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"`
	Type        FlowKind  `json:"type"`
	Account     string    `json:"account"`
	Category    string    `json:"category"`
	Date        Date      `json:"date"`
	DueDate     Date      `json:"due_date,omitempty"`
	Paid        bool      `json:"paid"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return Invalidf("description", "must not be empty")
	}
	if len(t.Description) > 200 {
		return Invalidf("description", "too long (max 200 characters)")
	}
	if err := t.Amount.ValidateAmount(); err != nil {
		return err
	}
	if _, err := ParseFlowKind(string(t.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(t.Account) == "" {
		return Invalidf("account", "must not be empty")
	}
	if strings.TrimSpace(t.Category) == "" {
		return Invalidf("category", "must not be empty")
	}
	if t.Date.IsZero() {
		return Invalidf("date", "must not be zero")
	}
	return nil
}

// Delta is the signed balance effect of the transaction on its account.
func (t Transaction) Delta() Money {
	if t.Type == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// EffectiveDate is the date used to bucket the transaction into a reporting
// period: the due date when due-date tracking applies, the transaction date
// otherwise.
func (t Transaction) EffectiveDate() Date {
	if !t.DueDate.IsZero() {
		return t.DueDate
	}
	return t.Date
}

// Budget is a per-category spending target for one month, unique per
// (category, month, year). Spent amounts are derived from the transaction
// log at report time.
type Budget struct {
	Category  string    `json:"category"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Amount    Money     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return Invalidf("category", "must not be empty")
	}
	if b.Month < 1 || b.Month > 12 {
		return Invalidf("month", "must be between 1 and 12")
	}
	if b.Year < 1 {
		return Invalidf("year", "must be positive")
	}
	if err := b.Amount.ValidateAmount(); err != nil {
		return err
	}
	return nil
}

// RecurringTransaction is a template that materializes into real transactions
// on a schedule.
type RecurringTransaction struct {
	ID            int64     `json:"id"`
	Description   string    `json:"description"`
	Amount        Money     `json:"amount"`
	Type          FlowKind  `json:"type"`
	Account       string    `json:"account"`
	Category      string    `json:"category"`
	Frequency     Frequency `json:"frequency"`
	StartDate     Date      `json:"start_date"`
	EndDate       Date      `json:"end_date,omitempty"`
	LastExecution Date      `json:"last_execution,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r RecurringTransaction) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return Invalidf("description", "must not be empty")
	}
	if err := r.Amount.ValidateAmount(); err != nil {
		return err
	}
	if _, err := ParseFlowKind(string(r.Type)); err != nil {
		return err
	}
	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Account) == "" {
		return Invalidf("account", "must not be empty")
	}
	if strings.TrimSpace(r.Category) == "" {
		return Invalidf("category", "must not be empty")
	}
	if r.StartDate.IsZero() {
		return Invalidf("start date", "must not be zero")
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return Invalidf("end date", "must not be before start date")
	}
	return nil
}
