package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsjohal14/hitlog/internal/scope/db"
	"github.com/rs/zerolog"
)

// HealthOptions controls the optional oversized record logged by /health
type HealthOptions struct {
	BurstProbability float64
	BurstBytes       int
}

// Handler contains HTTP handlers for the API
type Handler struct {
	store  db.CounterStore
	logger zerolog.Logger
	health HealthOptions
}

// NewHandler creates a new HTTP handler
func NewHandler(store db.CounterStore, logger zerolog.Logger, health HealthOptions) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
		health: health,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
	})
}
