package handlers

import (
	"net/http"
	"time"

	"github.com/maayanb/amuta-ledger/internal/api/middleware"
)

// Health reports process liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
