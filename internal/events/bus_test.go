package events

import (
	"encoding/json"
	"testing"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	bus.Publish(TransactionPaid{ID: 7})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case e := <-ch:
			if e.Name() != "transaction_paid" {
				t.Fatalf("subscriber %s: got event %q", name, e.Name())
			}
		default:
			t.Fatalf("subscriber %s: no event delivered", name)
		}
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	// Nobody drains; overfill the buffer and expect Publish to return anyway.
	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Publish(TransactionPaid{ID: int64(i)})
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(LedgerReset{})
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}
}

func TestBusCloseIsIdempotent(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe()
	bus.Close()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed subscriber channel after bus close")
	}
	bus.Publish(LedgerReset{}) // must not panic
}

func TestEnvelopeRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID:          3,
		Description: "market",
		Amount:      core.Money{Cents: 10050},
		Type:        core.Expense,
		Account:     "Checking",
		Category:    "Food",
		Date:        core.NewDate(2025, 6, 13),
	}
	env := Envelop(TransactionAdded{Transaction: tx})
	if env.ID == "" {
		t.Fatal("envelope must carry an id")
	}
	if env.Name != "transaction_added" {
		t.Fatalf("envelope name = %q", env.Name)
	}

	body, err := env.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := EnvelopeFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name != env.Name || decoded.ID != env.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, env)
	}
	if decoded.Payload["amount"] != "100.50" {
		t.Fatalf("amount payload = %v, want decimal string", decoded.Payload["amount"])
	}
	if _, err := json.Marshal(decoded); err != nil {
		t.Fatal(err)
	}
}
