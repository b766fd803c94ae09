package http

import (
	"net/http"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

type setBudgetRequest struct {
	Category string     `json:"category"`
	Month    int        `json:"month"`
	Year     int        `json:"year"`
	Amount   core.Money `json:"amount"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	b, err := s.ledger.SetBudget(r.Context(), core.Budget{
		Category: req.Category,
		Month:    req.Month,
		Year:     req.Year,
		Amount:   req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, year, err := queryMonthYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Budgets(month, year))
}

type addRecurringRequest struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Account     string     `json:"account"`
	Category    string     `json:"category"`
	Frequency   string     `json:"frequency"`
	StartDate   core.Date  `json:"start_date"`
	EndDate     core.Date  `json:"end_date"`
}

func (s *Server) handleAddRecurring(w http.ResponseWriter, r *http.Request) {
	var req addRecurringRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind, err := core.ParseFlowKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	freq, err := core.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := s.ledger.AddRecurring(r.Context(), core.RecurringTransaction{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        kind,
		Account:     req.Account,
		Category:    req.Category,
		Frequency:   freq,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req addRecurringRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind, err := core.ParseFlowKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	freq, err := core.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := s.ledger.UpdateRecurring(r.Context(), pathID(r), core.RecurringTransaction{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        kind,
		Account:     req.Account,
		Category:    req.Category,
		Frequency:   freq,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	b, err := queryBool(r, "include_inactive")
	if err != nil {
		writeError(w, err)
		return
	}
	if b != nil {
		includeInactive = *b
	}
	writeJSON(w, http.StatusOK, s.ledger.Recurring(includeInactive))
}

func (s *Server) handleDeactivateRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeactivateRecurring(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
