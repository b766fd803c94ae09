package core

import (
	"errors"
	"testing"
)

func TestParseAccountKind(t *testing.T) {
	for _, s := range []string{"checking", "savings", "investment", "credit-card", "cash"} {
		if _, err := ParseAccountKind(s); err != nil {
			t.Fatalf("ParseAccountKind(%q): %v", s, err)
		}
	}
	if _, err := ParseAccountKind("bitcoin"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestParseFlowKind(t *testing.T) {
	if _, err := ParseFlowKind("income"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFlowKind("expense"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFlowKind("transfer"); err == nil {
		t.Fatal("expected error for unknown flow kind")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "groceries",
		Amount:      Money{Cents: 10050},
		Type:        Expense,
		Account:     "Checking",
		Category:    "Food",
		Date:        NewDate(2025, 6, 13),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: 1}, Type: Expense, Account: "a", Category: "c", Date: NewDate(2025, 1, 1)},                            // empty description
		{Description: "x", Amount: Money{Cents: 0}, Type: Expense, Account: "a", Category: "c", Date: NewDate(2025, 1, 1)},          // zero amount
		{Description: "x", Amount: Money{Cents: 1}, Type: FlowKind("loan"), Account: "a", Category: "c", Date: NewDate(2025, 1, 1)}, // bad type
		{Description: "x", Amount: Money{Cents: 1}, Type: Income, Account: "", Category: "c", Date: NewDate(2025, 1, 1)},            // no account
		{Description: "x", Amount: Money{Cents: 1}, Type: Income, Account: "a", Category: "", Date: NewDate(2025, 1, 1)},            // no category
		{Description: "x", Amount: Money{Cents: 1}, Type: Income, Account: "a", Category: "c"},                                      // zero date
	}
	for i, tx := range bads {
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d: expected error", i)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: expected ValidationError, got %T", i, err)
		}
	}
}

func TestTransactionDelta(t *testing.T) {
	tx := Transaction{Amount: Money{Cents: 500}, Type: Income}
	if tx.Delta().Cents != 500 {
		t.Fatalf("income delta = %d, want 500", tx.Delta().Cents)
	}
	tx.Type = Expense
	if tx.Delta().Cents != -500 {
		t.Fatalf("expense delta = %d, want -500", tx.Delta().Cents)
	}
}

func TestTransactionEffectiveDate(t *testing.T) {
	tx := Transaction{Date: NewDate(2025, 6, 1)}
	if got := tx.EffectiveDate(); !got.Equal(NewDate(2025, 6, 1).Time) {
		t.Fatalf("effective date = %s, want transaction date", got)
	}
	tx.DueDate = NewDate(2025, 7, 10)
	if got := tx.EffectiveDate(); !got.Equal(NewDate(2025, 7, 10).Time) {
		t.Fatalf("effective date = %s, want due date", got)
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Category: "Food", Month: 6, Year: 2025, Amount: Money{Cents: 50000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for i, b := range []Budget{
		{Category: "", Month: 6, Year: 2025, Amount: Money{Cents: 1}},
		{Category: "Food", Month: 13, Year: 2025, Amount: Money{Cents: 1}},
		{Category: "Food", Month: 0, Year: 2025, Amount: Money{Cents: 1}},
		{Category: "Food", Month: 6, Year: 2025, Amount: Money{Cents: 0}},
	} {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestRecurringValidate(t *testing.T) {
	good := RecurringTransaction{
		Description: "rent",
		Amount:      Money{Cents: 120000},
		Type:        Expense,
		Account:     "Checking",
		Category:    "Housing",
		Frequency:   Monthly,
		StartDate:   NewDate(2025, 1, 5),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.EndDate = NewDate(2024, 12, 1)
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for end date before start date")
	}

	bad = good
	bad.Frequency = Frequency("fortnightly")
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !IsNotFound(&NotFoundError{Entity: "account", Key: "X"}) {
		t.Fatal("IsNotFound should match NotFoundError")
	}
	if !IsDuplicate(&DuplicateError{Entity: "account", Key: "X"}) {
		t.Fatal("IsDuplicate should match DuplicateError")
	}
	if !IsValidation(Invalidf("amount", "bad")) {
		t.Fatal("IsValidation should match ValidationError")
	}
	if IsNotFound(Invalidf("amount", "bad")) {
		t.Fatal("IsNotFound should not match ValidationError")
	}
}
