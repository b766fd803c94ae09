package http

import (
	"net/http"
)

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := queryMonthYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.MonthlySummary(month, year))
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.ExpensesByCategory(from, to))
}

func (s *Server) handleDueTransactions(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.DueTransactions(asOf))
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month, year, err := queryMonthYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.BudgetStatus(month, year))
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"total_balance": s.ledger.TotalBalance()})
}
