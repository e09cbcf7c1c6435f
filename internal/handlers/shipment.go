// internal/handlers/shipment.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// ShipmentHandler handles shipment HTTP requests
type ShipmentHandler struct {
	service ports.ShipmentService
	logger  *slog.Logger
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(service ports.ShipmentService, logger *slog.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "shipment")),
	}
}

// CreateShipmentRequest is the body for staging a shipment.
type CreateShipmentRequest struct {
	StoreID uuid.UUID                    `json:"store_id"`
	Lines   []domain.ShipmentRequestLine `json:"lines"`
}

// Create handles POST /api/v1/shipments
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	shipment, err := h.service.Create(ctx, req.StoreID, req.Lines)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create shipment",
			slog.String("store_id", req.StoreID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, shipment)
}

// AssignPricesRequest carries store prices keyed by shipment line ID.
type AssignPricesRequest struct {
	Prices map[uuid.UUID]decimal.Decimal `json:"prices"`
}

// AssignPrices handles PUT /api/v1/shipments/{id}/prices
func (h *ShipmentHandler) AssignPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shipmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid shipment ID format")
		return
	}

	var req AssignPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	shipment, err := h.service.AssignPrices(ctx, shipmentID, req.Prices)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to assign prices",
			slog.String("shipment_id", shipmentID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, shipment)
}

// Confirm handles POST /api/v1/shipments/{id}/confirm
func (h *ShipmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Confirm, "confirm")
}

// Cancel handles POST /api/v1/shipments/{id}/cancel
func (h *ShipmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel, "cancel")
}

func (h *ShipmentHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*domain.Shipment, error), name string) {

	ctx := r.Context()

	shipmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid shipment ID format")
		return
	}

	shipment, err := op(ctx, shipmentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "shipment transition failed",
			slog.String("shipment_id", shipmentID.String()),
			slog.String("op", name),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, shipment)
}

// Get handles GET /api/v1/shipments/{id}
func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shipmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid shipment ID format")
		return
	}

	shipment, err := h.service.GetByID(ctx, shipmentID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, shipment)
}

// List handles GET /api/v1/shipments
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.ShipmentListParams{Page: 1, PageSize: 20}
	q := r.URL.Query()

	if v := q.Get("store_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid store_id format")
			return
		}
		params.StoreID = &id
	}
	if v := q.Get("status"); v != "" {
		params.Status = domain.ShipmentStatus(v)
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.DateTo = &t
		}
	}
	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			params.Page = p
		}
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			params.PageSize = l
		}
	}

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list shipments",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
