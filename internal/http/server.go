// Package http exposes the ledger over a JSON REST API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/DjTiagoSantos/home-ledger/internal/ledger"
)

// Server wraps the HTTP listener and routes requests to the ledger.
type Server struct {
	httpServer *http.Server
	ledger     *ledger.Ledger
}

func NewServer(port string, l *ledger.Ledger) *Server {
	s := &Server{ledger: l}

	r := mux.NewRouter()
	r.Use(requestLogger)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.handleAddAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{name}", s.handleGetAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{name}", s.handleDeactivateAccount).Methods(http.MethodDelete)
	api.HandleFunc("/accounts/{name}/balance", s.handleAccountBalance).Methods(http.MethodGet)

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleAddCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{name}", s.handleDeactivateCategory).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleAddTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/{id:[0-9]+}/pay", s.handleMarkPaid).Methods(http.MethodPost)

	api.HandleFunc("/budgets", s.handleListBudgets).Methods(http.MethodGet)
	api.HandleFunc("/budgets", s.handleSetBudget).Methods(http.MethodPut)

	api.HandleFunc("/recurring", s.handleListRecurring).Methods(http.MethodGet)
	api.HandleFunc("/recurring", s.handleAddRecurring).Methods(http.MethodPost)
	api.HandleFunc("/recurring/{id:[0-9]+}", s.handleUpdateRecurring).Methods(http.MethodPut)
	api.HandleFunc("/recurring/{id:[0-9]+}", s.handleDeactivateRecurring).Methods(http.MethodDelete)

	api.HandleFunc("/reports/summary", s.handleMonthlySummary).Methods(http.MethodGet)
	api.HandleFunc("/reports/expenses-by-category", s.handleExpensesByCategory).Methods(http.MethodGet)
	api.HandleFunc("/reports/due", s.handleDueTransactions).Methods(http.MethodGet)
	api.HandleFunc("/reports/budget-status", s.handleBudgetStatus).Methods(http.MethodGet)
	api.HandleFunc("/reports/total-balance", s.handleTotalBalance).Methods(http.MethodGet)

	api.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the ledger loaded; a nil ledger means startup is incomplete.
	if s.ledger == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger tags every request with a short id and logs method, path,
// status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := newRequestID()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		ww.Header().Set("X-Request-ID", reqID)

		next.ServeHTTP(ww, r)

		slog.Info("Request handled",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration", time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}
