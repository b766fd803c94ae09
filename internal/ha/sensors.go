package ha

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
)

// SensorSet derives the Home Assistant sensors from ledger state and pushes
// them under a common entity prefix.
type SensorSet struct {
	client *Client
	prefix string
}

func NewSensorSet(client *Client, prefix string) *SensorSet {
	if prefix == "" {
		prefix = "home_ledger"
	}
	return &SensorSet{client: client, prefix: prefix}
}

// Refresh recomputes every sensor from the ledger and pushes them. Individual
// sensor failures are logged and skipped so one bad update does not hide the
// rest.
func (s *SensorSet) Refresh(ctx context.Context, l *ledger.Ledger) error {
	summary := l.MonthlySummary(0, 0)
	due := l.DueTransactions(core.Date{})

	sensors := map[string]SensorState{
		"total_balance": {
			State: l.TotalBalance().String(),
			Attributes: map[string]any{
				"unit_of_measurement": "EUR",
				"friendly_name":       "Total balance",
				"icon":                "mdi:wallet",
			},
		},
		"monthly_income": {
			State: summary.Income.String(),
			Attributes: map[string]any{
				"unit_of_measurement": "EUR",
				"friendly_name":       "Monthly income",
				"month":               summary.Month,
				"year":                summary.Year,
			},
		},
		"monthly_expenses": {
			State: summary.Expenses.String(),
			Attributes: map[string]any{
				"unit_of_measurement": "EUR",
				"friendly_name":       "Monthly expenses",
				"month":               summary.Month,
				"year":                summary.Year,
			},
		},
		"monthly_net": {
			State: summary.Balance.String(),
			Attributes: map[string]any{
				"unit_of_measurement": "EUR",
				"friendly_name":       "Monthly net",
			},
		},
		"monthly_transactions": {
			State: fmt.Sprintf("%d", summary.Count),
			Attributes: map[string]any{
				"friendly_name": "Monthly transactions",
				"month":         summary.Month,
				"year":          summary.Year,
			},
		},
		"due_count": {
			State: fmt.Sprintf("%d", len(due)),
			Attributes: map[string]any{
				"friendly_name": "Unpaid due transactions",
				"icon":          "mdi:calendar-alert",
			},
		},
	}

	if last := l.Transactions(ledger.TxFilter{Limit: 1}); len(last) == 1 {
		sensors["last_transaction"] = SensorState{
			State: last[0].Description,
			Attributes: map[string]any{
				"friendly_name": "Last transaction",
				"amount":        last[0].Amount.String(),
				"type":          string(last[0].Type),
				"account":       last[0].Account,
				"category":      last[0].Category,
				"date":          last[0].Date.String(),
			},
		}
	}

	for _, acc := range l.Accounts(false) {
		sensors["balance_"+entitySlug(acc.Name)] = SensorState{
			State: acc.CurrentBalance.String(),
			Attributes: map[string]any{
				"unit_of_measurement": "EUR",
				"friendly_name":       acc.Name + " balance",
				"account_kind":        string(acc.Kind),
			},
		}
	}

	var failed int
	for name, state := range sensors {
		entityID := s.prefix + "_" + name
		if err := s.client.UpsertSensor(ctx, entityID, state); err != nil {
			failed++
			slog.WarnContext(ctx, "Sensor update failed", "entity_id", entityID, "error", err)
		}
	}
	if failed == len(sensors) && failed > 0 {
		return fmt.Errorf("all %d sensor updates failed", failed)
	}
	return nil
}

// entitySlug lowercases and squashes an account name into an entity id
// fragment Home Assistant accepts.
func entitySlug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			if len(out) > 0 && out[len(out)-1] != '_' {
				out = append(out, '_')
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '_' {
		out = out[:len(out)-1]
	}
	return string(out)
}
