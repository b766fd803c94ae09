package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

type addAccountRequest struct {
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	InitialBalance core.Money `json:"initial_balance"`
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req addAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind, err := core.ParseAccountKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}

	acc, err := s.ledger.AddAccount(r.Context(), core.Account{
		Name:           req.Name,
		Kind:           kind,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	b, err := queryBool(r, "include_inactive")
	if err != nil {
		writeError(w, err)
		return
	}
	if b != nil {
		includeInactive = *b
	}
	writeJSON(w, http.StatusOK, s.ledger.Accounts(includeInactive))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.ledger.Account(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeactivateAccount(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	writeJSON(w, http.StatusOK, map[string]any{
		"account": name,
		"balance": s.ledger.Balance(name),
	})
}
