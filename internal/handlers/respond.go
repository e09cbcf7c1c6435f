// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/voltdepot/stock-be/internal/core/domain"
)

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// respondDomainError maps the error taxonomy onto HTTP statuses. Conflicts
// with current stock or shipment state are 409; the body carries the
// specific failure so clients can distinguish them.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrIncompletePricing),
		errors.Is(err, domain.ErrAlreadyTerminal),
		errors.Is(err, domain.ErrInvalidStateTransition):
		respondError(w, logger, http.StatusConflict, err.Error())
	default:
		respondError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}
