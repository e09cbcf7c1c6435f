// internal/handlers/summary.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	redis_a "github.com/voltdepot/stock-be/internal/adapters/redis_adapter"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// SummaryHandler serves cached per-store and system-wide aggregates. The
// summaries are derived views; mutations invalidate them through the change
// notification worker.
type SummaryHandler struct {
	db     ports.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(database ports.Database, cache ports.CacheRepository, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{
		db:     database,
		cache:  cache,
		logger: logger.With(slog.String("handler", "summary")),
	}
}

// StoreSummary aggregates one store's stock, sales and expenses.
type StoreSummary struct {
	StoreID       uuid.UUID       `json:"store_id"`
	StockLines    int64           `json:"stock_lines"`
	StockUnits    int64           `json:"stock_units"`
	StockValue    decimal.Decimal `json:"stock_value"`
	SalesCount    int64           `json:"sales_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	Timestamp     time.Time       `json:"timestamp"`
}

// SystemSummary aggregates the whole system, central included.
type SystemSummary struct {
	CentralUnits     int64           `json:"central_units"`
	CentralValue     decimal.Decimal `json:"central_value"`
	StoreUnits       int64           `json:"store_units"`
	PendingShipments int64           `json:"pending_shipments"`
	StagedUnits      int64           `json:"staged_units"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	Timestamp        time.Time       `json:"timestamp"`
}

// GetStoreSummary handles GET /api/v1/stores/{id}/summary
func (h *SummaryHandler) GetStoreSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixSummary, "store", storeID.String())
	var summary StoreSummary

	err = h.cache.GetOrSet(ctx, cacheKey, &summary, func() (interface{}, error) {
		return h.loadStoreSummary(ctx, storeID)
	}, 5*time.Minute)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load store summary",
			slog.String("store_id", storeID.String()),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load summary")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, summary)
}

// GetSystemSummary handles GET /api/v1/summary
func (h *SummaryHandler) GetSystemSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixSummary, "system")
	var summary SystemSummary

	err := h.cache.GetOrSet(ctx, cacheKey, &summary, func() (interface{}, error) {
		return h.loadSystemSummary(ctx)
	}, 5*time.Minute)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load system summary",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load summary")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, summary)
}

func (h *SummaryHandler) loadStoreSummary(ctx context.Context, storeID uuid.UUID) (*StoreSummary, error) {
	summary := &StoreSummary{
		StoreID:   storeID,
		Timestamp: time.Now(),
	}

	err := h.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * unit_price), 0)
		FROM stock_lines
		WHERE store_id = $1 AND quantity > 0`,
		storeID).Scan(&summary.StockLines, &summary.StockUnits, &summary.StockValue)
	if err != nil {
		return nil, err
	}

	err = h.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_revenue), 0), COALESCE(SUM(profit), 0)
		FROM sales
		WHERE store_id = $1`,
		storeID).Scan(&summary.SalesCount, &summary.TotalRevenue, &summary.TotalProfit)
	if err != nil {
		return nil, err
	}

	err = h.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE store_id = $1`,
		storeID).Scan(&summary.TotalExpenses)
	if err != nil {
		return nil, err
	}

	summary.NetProfit = summary.TotalProfit.Sub(summary.TotalExpenses)

	return summary, nil
}

func (h *SummaryHandler) loadSystemSummary(ctx context.Context) (*SystemSummary, error) {
	summary := &SystemSummary{
		Timestamp: time.Now(),
	}

	err := h.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE store_id = $1), 0),
			COALESCE(SUM(quantity * unit_price) FILTER (WHERE store_id = $1), 0),
			COALESCE(SUM(quantity) FILTER (WHERE store_id <> $1), 0)
		FROM stock_lines`,
		uuid.Nil).Scan(&summary.CentralUnits, &summary.CentralValue, &summary.StoreUnits)
	if err != nil {
		return nil, err
	}

	// Units inside non-terminal shipments belong to no pool but still count.
	err = h.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_units), 0)
		FROM shipments
		WHERE status IN ('pending', 'prices_assigned')`).
		Scan(&summary.PendingShipments, &summary.StagedUnits)
	if err != nil {
		return nil, err
	}

	err = h.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_revenue), 0), COALESCE(SUM(profit), 0) FROM sales`).
		Scan(&summary.TotalRevenue, &summary.TotalProfit)
	if err != nil {
		return nil, err
	}

	return summary, nil
}
