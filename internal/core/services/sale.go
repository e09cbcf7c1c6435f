// internal/core/services/sale.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// SaleService owns sale registration and its compensating delete.
type SaleService struct {
	sales    ports.SaleRepository
	stores   ports.StoreRepository
	notifier ports.ChangeNotifier
	logger   *slog.Logger
}

// Statically assert that *SaleService implements the SaleService interface.
var _ ports.SaleService = (*SaleService)(nil)

// NewSaleService creates a new sale service
func NewSaleService(sales ports.SaleRepository, stores ports.StoreRepository, notifier ports.ChangeNotifier, logger *slog.Logger) *SaleService {
	return &SaleService{
		sales:    sales,
		stores:   stores,
		notifier: notifier,
		logger:   logger.With(slog.String("service", "sale")),
	}
}

// Register records a store sale. The sold units leave the store pool and the
// sale inserts in one transaction; a short line fails the whole sale.
// The line's unit price and unit cost are the negotiated front-line figures,
// so they may differ from the stored store snapshots.
func (s *SaleService) Register(ctx context.Context, storeID uuid.UUID, lines []domain.SaleLine, notes string) (*domain.Sale, error) {
	if storeID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "store_id", Reason: "is required"}
	}
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Field: "lines", Reason: "must not be empty"}
	}

	seen := make(map[domain.StockKey]bool, len(lines))
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		key := domain.StockKey{Brand: lines[i].Brand, Rating: lines[i].Rating}
		if seen[key] {
			return nil, &domain.ValidationError{Field: "lines", Reason: fmt.Sprintf("duplicate line for %s %s", key.Brand, key.Rating)}
		}
		seen[key] = true
	}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		StoreID: storeID,
		Notes:   notes,
		Lines:   lines,
	}

	if err := s.sales.Register(ctx, sale); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, ports.Change{Entity: "sale", StoreID: storeID, ID: sale.ID})
	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: storeID})

	return sale, nil
}

// Delete reverses a sale, returning sold units to the store pool.
func (s *SaleService) Delete(ctx context.Context, saleID uuid.UUID) error {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return err
	}

	if err := s.sales.Delete(ctx, saleID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "sale reversed",
		slog.String("sale_id", saleID.String()),
		slog.String("store_id", sale.StoreID.String()))

	s.notifier.Notify(ctx, ports.Change{Entity: "sale", StoreID: sale.StoreID, ID: saleID})
	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: sale.StoreID})

	return nil
}

// GetByID retrieves a sale with its lines.
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	return s.sales.FindByID(ctx, saleID)
}

// List retrieves a page of sales.
func (s *SaleService) List(ctx context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	sales, total, err := s.sales.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ports.SaleListResult{
		Sales:      sales,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
	}, nil
}
