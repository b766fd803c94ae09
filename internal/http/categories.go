package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

type addCategoryRequest struct {
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	BudgetLimit *core.Money `json:"budget_limit,omitempty"`
	Color       string      `json:"color"`
	Icon        string      `json:"icon"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req addCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind, err := core.ParseFlowKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}

	cat, err := s.ledger.AddCategory(r.Context(), core.Category{
		Name:        req.Name,
		Kind:        kind,
		BudgetLimit: req.BudgetLimit,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	b, err := queryBool(r, "include_inactive")
	if err != nil {
		writeError(w, err)
		return
	}
	if b != nil {
		includeInactive = *b
	}
	writeJSON(w, http.StatusOK, s.ledger.Categories(includeInactive))
}

func (s *Server) handleDeactivateCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeactivateCategory(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
