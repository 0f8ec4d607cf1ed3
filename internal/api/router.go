// Package api assembles the HTTP routing and middleware chain.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/maayanb/amuta-ledger/internal/api/handlers"
	"github.com/maayanb/amuta-ledger/internal/api/middleware"
)

// NewRouter wires the transaction routes behind the standard middleware
// chain.
func NewRouter(h *handlers.TransactionsHandler, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	r.HandleFunc("/transactions/summary", h.Summary).Methods(http.MethodGet)
	r.HandleFunc("/transactions/export", h.Export).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.List).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/transactions/{id}", h.Delete).Methods(http.MethodDelete)

	var handler http.Handler = r
	handler = middleware.CORS(handler)
	handler = middleware.RequestLogger(log)(handler)
	handler = middleware.RequestID(log)(handler)
	handler = middleware.Recovery(log)(handler)
	return handler
}
