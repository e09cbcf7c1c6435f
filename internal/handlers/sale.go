// internal/handlers/sale.go
package handlers

import (
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

// SaleHandler handles sale HTTP requests
type SaleHandler struct {
	service ports.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service ports.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "sale")),
	}
}

// RegisterSaleRequest is the body for registering a store sale.
type RegisterSaleRequest struct {
	StoreID uuid.UUID         `json:"store_id"`
	Notes   string            `json:"notes,omitempty"`
	Lines   []RegisterSaleLine `json:"lines"`
}

// RegisterSaleLine is one sold (brand, rating) slice. Unit price and unit
// cost are the negotiated front-line figures, not the stored snapshots.
type RegisterSaleLine struct {
	Brand     string          `json:"brand"`
	Rating    string          `json:"rating"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// Register handles POST /api/v1/sales
func (h *SaleHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	lines := make([]domain.SaleLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, domain.SaleLine{
			Brand:     l.Brand,
			Rating:    l.Rating,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			UnitCost:  l.UnitCost,
		})
	}

	sale, err := h.service.Register(ctx, req.StoreID, lines, req.Notes)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to register sale",
			slog.String("store_id", req.StoreID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, sale)
}

// Delete handles DELETE /api/v1/sales/{id}
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	saleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	if err := h.service.Delete(ctx, saleID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete sale",
			slog.String("sale_id", saleID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Sale deleted and stock restored",
		"sale_id": saleID.String(),
	})
}

// Get handles GET /api/v1/sales/{id}
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	saleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.service.GetByID(ctx, saleID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, sale)
}

// List handles GET /api/v1/sales
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.SaleListParams{Page: 1, PageSize: 20}
	q := r.URL.Query()

	if v := q.Get("store_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid store_id format")
			return
		}
		params.StoreID = &id
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
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
