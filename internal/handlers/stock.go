// internal/handlers/stock.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
	"github.com/voltdepot/stock-be/internal/workers"
)

// StockHandler handles stock ledger HTTP requests
type StockHandler struct {
	service     ports.StockService
	asynqClient *asynq.Client
	logger      *slog.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service ports.StockService, asynqClient *asynq.Client, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service:     service,
		asynqClient: asynqClient,
		logger:      logger.With(slog.String("handler", "stock")),
	}
}

// enqueueMaintenance queues summary invalidation and a zero-line sweep after
// a bulk stock mutation. Failures are logged, never surfaced: the mutation
// already committed and the caches expire on their own.
func (h *StockHandler) enqueueMaintenance(ctx context.Context, storeID uuid.UUID) {
	if h.asynqClient == nil {
		return
	}

	task, err := workers.NewSummaryRefreshTask(storeID)
	if err == nil {
		_, err = h.asynqClient.Enqueue(task, asynq.Queue("default"), asynq.MaxRetry(3))
	}
	if err != nil {
		h.logger.WarnContext(ctx, "failed to enqueue summary refresh",
			slog.String("error", err.Error()))
	}

	if _, err := h.asynqClient.Enqueue(workers.NewPruneZeroStockTask(), asynq.Queue("low")); err != nil {
		h.logger.WarnContext(ctx, "failed to enqueue stock prune",
			slog.String("error", err.Error()))
	}
}

// ReceiveStockRequest is the body for adding purchased units to central.
type ReceiveStockRequest struct {
	Lines []ReceiveStockLine `json:"lines"`
}

// ReceiveStockLine is one received (brand, rating) batch.
type ReceiveStockLine struct {
	Brand     string          `json:"brand"`
	Rating    string          `json:"rating"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ReceiveCentral handles POST /api/v1/stock/central
func (h *StockHandler) ReceiveCentral(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReceiveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	lines := make([]domain.StockLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, domain.StockLine{
			Brand:     l.Brand,
			Rating:    l.Rating,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			UnitPrice: l.UnitPrice,
		})
	}

	if err := h.service.ReceiveCentralStock(ctx, lines); err != nil {
		h.logger.ErrorContext(ctx, "failed to receive central stock",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.enqueueMaintenance(ctx, uuid.Nil)

	respondJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"message": "Stock received",
		"lines":   len(lines),
	})
}

// List handles GET /api/v1/stock. The location query parameter selects the
// pool: "central" (the default) or a store UUID.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	loc := domain.Central
	if s := r.URL.Query().Get("location"); s != "" && s != "central" {
		storeID, err := uuid.Parse(s)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid location: expected 'central' or a store ID")
			return
		}
		loc = domain.StoreLocation(storeID)
	}
	h.listLocation(w, r, loc)
}

func (h *StockHandler) listLocation(w http.ResponseWriter, r *http.Request, loc domain.Location) {
	ctx := r.Context()

	lines, err := h.service.StockByLocation(ctx, loc)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list stock",
			slog.String("location", loc.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"location": loc.String(),
		"lines":    lines,
	})
}

// ReturnAll handles POST /api/v1/stores/{id}/return-to-central
func (h *StockHandler) ReturnAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	report, err := h.service.ReturnAllToCentral(ctx, storeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to return store stock",
			slog.String("store_id", storeID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	if len(report.Moved) > 0 {
		h.enqueueMaintenance(ctx, storeID)
	}

	// A partial failure is reported, not hidden: the caller re-runs to
	// move the remainder.
	status := http.StatusOK
	if len(report.Failed) > 0 {
		status = http.StatusMultiStatus
	}

	respondJSON(w, h.logger, status, report)
}

// ImportRequest is the body for an opening-balance import.
type ImportRequest struct {
	Lines []domain.ImportLine `json:"lines"`
	Mode  string              `json:"mode,omitempty"`
}

// AnalyzeImport handles POST /api/v1/stores/{id}/opening-balance/analyze
func (h *StockHandler) AnalyzeImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := h.service.AnalyzeOpeningBalance(ctx, storeID, req.Lines)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to analyze import",
			slog.String("store_id", storeID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, analysis)
}

// CommitImport handles POST /api/v1/stores/{id}/opening-balance/commit
func (h *StockHandler) CommitImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mode := domain.ImportMode(req.Mode)
	if req.Mode == "" {
		mode = domain.ImportModeSum
	}

	if err := h.service.CommitOpeningBalance(ctx, storeID, req.Lines, mode); err != nil {
		h.logger.ErrorContext(ctx, "failed to commit import",
			slog.String("store_id", storeID.String()),
			slog.String("mode", string(mode)),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.enqueueMaintenance(ctx, storeID)

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Opening balance committed",
		"lines":   len(req.Lines),
		"mode":    string(mode),
	})
}
