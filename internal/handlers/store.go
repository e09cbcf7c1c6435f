// internal/handlers/store.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// StoreHandler handles store registry HTTP requests. The registry is thin
// enough to sit directly on the repository.
type StoreHandler struct {
	stores ports.StoreRepository
	logger *slog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(stores ports.StoreRepository, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		stores: stores,
		logger: logger.With(slog.String("handler", "store")),
	}
}

// SaveStoreRequest is the body for creating or updating a store.
type SaveStoreRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"`
}

// Create handles POST /api/v1/stores
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	store := &domain.Store{Name: req.Name, Active: true}
	if req.Active != nil {
		store.Active = *req.Active
	}
	if err := store.Validate(); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	if err := h.stores.Save(ctx, store); err != nil {
		h.logger.ErrorContext(ctx, "failed to save store",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, store)
}

// Update handles PUT /api/v1/stores/{id}
func (h *StoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	var req SaveStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	store, err := h.stores.FindByID(ctx, storeID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	if req.Name != "" {
		store.Name = req.Name
	}
	if req.Active != nil {
		store.Active = *req.Active
	}
	if err := store.Validate(); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	if err := h.stores.Save(ctx, store); err != nil {
		h.logger.ErrorContext(ctx, "failed to update store",
			slog.String("store_id", storeID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, store)
}

// Get handles GET /api/v1/stores/{id}
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	store, err := h.stores.FindByID(ctx, storeID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, store)
}

// List handles GET /api/v1/stores
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stores, err := h.stores.FindAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list stores",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"stores": stores,
	})
}
