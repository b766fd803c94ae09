package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
)

// RecurringProcessor materializes due recurring templates into real
// transactions.
type RecurringProcessor struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewRecurringProcessor(l *ledger.Ledger, clock func() time.Time) *RecurringProcessor {
	if clock == nil {
		clock = time.Now
	}
	return &RecurringProcessor{ledger: l, now: clock}
}

// ProcessDue walks every active template and creates a transaction for each
// one that is due. A failure on one template is logged and does not stop the
// rest. Returns the number of transactions created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context) (int, error) {
	if p.ledger == nil {
		return 0, fmt.Errorf("processor has no ledger")
	}

	now := p.now().UTC()
	today := core.Today(now)
	templates := p.ledger.Recurring(false)

	slog.InfoContext(ctx, "Processing recurring transactions",
		"active_templates", len(templates),
		"processing_date", today)

	processed := 0
	for _, tmpl := range templates {
		due, err := p.isDue(tmpl, now, today)
		if err != nil {
			slog.ErrorContext(ctx, "Dueness check failed", "recurring_id", tmpl.ID, "error", err)
			continue
		}
		if !due {
			continue
		}

		tx, err := p.ledger.AddTransaction(ctx, core.Transaction{
			Description: tmpl.Description,
			Amount:      tmpl.Amount,
			Type:        tmpl.Type,
			Account:     tmpl.Account,
			Category:    tmpl.Category,
			Date:        today,
			Notes:       fmt.Sprintf("recurring #%d", tmpl.ID),
		})
		if err != nil {
			slog.ErrorContext(ctx, "Create transaction from template failed",
				"recurring_id", tmpl.ID,
				"description", tmpl.Description,
				"error", err)
			continue
		}

		if err := p.ledger.MarkRecurringExecuted(ctx, tmpl.ID, today); err != nil {
			// The transaction exists; without the execution mark it would
			// fire again next run, so report loudly.
			slog.ErrorContext(ctx, "Update last execution failed",
				"recurring_id", tmpl.ID,
				"transaction_id", tx.ID,
				"error", err)
			continue
		}

		processed++
		slog.InfoContext(ctx, "Transaction created from recurring template",
			"recurring_id", tmpl.ID,
			"transaction_id", tx.ID,
			"description", tmpl.Description,
			"amount", tmpl.Amount)
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed, "checked", len(templates))
	return processed, nil
}

func (p *RecurringProcessor) isDue(tmpl core.RecurringTransaction, now time.Time, today core.Date) (bool, error) {
	if today.Before(tmpl.StartDate) {
		return false, nil
	}
	if !tmpl.EndDate.IsZero() && tmpl.EndDate.Before(today) {
		return false, nil
	}

	checker, err := CheckerFor(tmpl.Frequency)
	if err != nil {
		return false, err
	}
	return checker.IsDue(tmpl.LastExecution.Time, now, tmpl.StartDate), nil
}
