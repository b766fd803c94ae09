// Package events carries ledger domain events from the mutation path to
// external subscribers. The ledger publishes and never waits; subscribers
// consume asynchronously from the in-process bus, and the AMQP publisher
// forwards envelopes to the message broker for out-of-process consumers.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// Event is a typed ledger domain event.
type Event interface {
	// Name is the wire identifier, e.g. "transaction_added".
	Name() string
	// Payload returns the key fields carried to subscribers.
	Payload() map[string]any
}

// TransactionAdded fires after a transaction is recorded and its balance
// delta applied.
type TransactionAdded struct {
	Transaction core.Transaction
}

func (e TransactionAdded) Name() string { return "transaction_added" }

func (e TransactionAdded) Payload() map[string]any {
	return map[string]any{
		"id":          e.Transaction.ID,
		"account":     e.Transaction.Account,
		"category":    e.Transaction.Category,
		"amount":      e.Transaction.Amount.String(),
		"type":        string(e.Transaction.Type),
		"description": e.Transaction.Description,
		"due_date":    e.Transaction.DueDate.String(),
	}
}

// TransactionUpdated fires after a transaction's fields (and balance effect)
// have been replaced.
type TransactionUpdated struct {
	Transaction core.Transaction
}

func (e TransactionUpdated) Name() string { return "transaction_updated" }

func (e TransactionUpdated) Payload() map[string]any {
	return map[string]any{
		"id":      e.Transaction.ID,
		"account": e.Transaction.Account,
		"amount":  e.Transaction.Amount.String(),
		"type":    string(e.Transaction.Type),
	}
}

// TransactionDeleted fires after a transaction is removed and its balance
// effect reversed.
type TransactionDeleted struct {
	ID      int64
	Account string
}

func (e TransactionDeleted) Name() string { return "transaction_deleted" }

func (e TransactionDeleted) Payload() map[string]any {
	return map[string]any{"id": e.ID, "account": e.Account}
}

// TransactionPaid fires when a transaction's paid flag flips to true.
type TransactionPaid struct {
	ID int64
}

func (e TransactionPaid) Name() string { return "transaction_paid" }

func (e TransactionPaid) Payload() map[string]any {
	return map[string]any{"id": e.ID}
}

// AccountAdded fires after a new account is registered.
type AccountAdded struct {
	Account core.Account
}

func (e AccountAdded) Name() string { return "account_added" }

func (e AccountAdded) Payload() map[string]any {
	return map[string]any{
		"name":            e.Account.Name,
		"kind":            string(e.Account.Kind),
		"initial_balance": e.Account.InitialBalance.String(),
	}
}

// LedgerReset fires after the transaction log is cleared and balances
// restored.
type LedgerReset struct{}

func (e LedgerReset) Name() string { return "ledger_reset" }

func (e LedgerReset) Payload() map[string]any { return map[string]any{} }

// Envelope is the broker wire format: one event with a unique id and
// publication timestamp.
type Envelope struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Time    time.Time      `json:"time"`
	Payload map[string]any `json:"payload"`
}

// Envelop wraps an event for transport.
func Envelop(e Event) Envelope {
	return Envelope{
		ID:      uuid.NewString(),
		Name:    e.Name(),
		Time:    time.Now().UTC(),
		Payload: e.Payload(),
	}
}

func (env Envelope) MarshalBinary() ([]byte, error) {
	return json.Marshal(env)
}

// EnvelopeFromJSON decodes a broker message body.
func EnvelopeFromJSON(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
