package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
)

type transactionRequest struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Type        string     `json:"type"`
	Account     string     `json:"account"`
	Category    string     `json:"category"`
	Date        core.Date  `json:"date"`
	DueDate     core.Date  `json:"due_date"`
	Paid        bool       `json:"paid"`
	Notes       string     `json:"notes"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	kind, err := core.ParseFlowKind(req.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        kind,
		Account:     req.Account,
		Category:    req.Category,
		Date:        req.Date,
		DueDate:     req.DueDate,
		Paid:        req.Paid,
		Notes:       req.Notes,
	}, nil
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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

	paid, err := queryBool(r, "paid")
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	filter := ledger.TxFilter{
		Account:  r.URL.Query().Get("account"),
		Category: r.URL.Query().Get("category"),
		Type:     core.FlowKind(r.URL.Query().Get("type")),
		From:     from,
		To:       to,
		Paid:     paid,
		Limit:    limit,
		Offset:   offset,
	}
	writeJSON(w, http.StatusOK, s.ledger.Transactions(filter))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.Transaction(pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), pathID(r), tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.MarkPaid(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type resetRequest struct {
	Policy string `json:"policy"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	req := resetRequest{Policy: string(ledger.ResetTransactions)}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	policy, err := ledger.ParseResetPolicy(req.Policy)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ledger.Reset(r.Context(), policy); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "policy": req.Policy})
}
