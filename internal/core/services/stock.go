// internal/core/services/stock.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// StockService handles ledger-level operations and store-inventory bulk
// operations.
type StockService struct {
	stock    ports.StockRepository
	stores   ports.StoreRepository
	notifier ports.ChangeNotifier
	logger   *slog.Logger
}

// Statically assert that *StockService implements the StockService interface.
var _ ports.StockService = (*StockService)(nil)

// NewStockService creates a new stock service
func NewStockService(stock ports.StockRepository, stores ports.StoreRepository, notifier ports.ChangeNotifier, logger *slog.Logger) *StockService {
	return &StockService{
		stock:    stock,
		stores:   stores,
		notifier: notifier,
		logger:   logger.With(slog.String("service", "stock")),
	}
}

// ReceiveCentralStock adds purchased units into the central pool. The
// supplied cost and price become the line's snapshots.
func (s *StockService) ReceiveCentralStock(ctx context.Context, lines []domain.StockLine) error {
	if len(lines) == 0 {
		return &domain.ValidationError{Field: "lines", Reason: "must not be empty"}
	}
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		if lines[i].Quantity == 0 {
			return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
	}

	for i := range lines {
		line := &lines[i]
		err := s.stock.Release(ctx, domain.Central, line.Brand, line.Rating,
			line.Quantity, line.UnitCost, line.UnitPrice, true)
		if err != nil {
			return fmt.Errorf("failed to receive stock for %s %s: %w", line.Brand, line.Rating, err)
		}
	}

	s.logger.InfoContext(ctx, "received central stock",
		slog.Int("lines", len(lines)))

	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: uuid.Nil})

	return nil
}

// StockByLocation returns the location's current lines with stock on hand.
func (s *StockService) StockByLocation(ctx context.Context, loc domain.Location) ([]domain.StockLine, error) {
	lines, err := s.stock.ListByLocation(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return lines, nil
}

// ReturnAllToCentral moves every line of the store back into central. Each
// line moves in its own transaction; a mid-run failure leaves already-moved
// lines moved, and the report tells the caller to re-run for the rest.
func (s *StockService) ReturnAllToCentral(ctx context.Context, storeID uuid.UUID) (*ports.ReturnReport, error) {
	if storeID == uuid.Nil {
		return nil, &domain.ValidationError{Field: "store_id", Reason: "is required"}
	}
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	lines, err := s.stock.ListByLocation(ctx, domain.StoreLocation(storeID))
	if err != nil {
		return nil, fmt.Errorf("failed to list store stock: %w", err)
	}

	report := &ports.ReturnReport{}
	for i := range lines {
		line := &lines[i]
		key := domain.StockKey{Brand: line.Brand, Rating: line.Rating}
		if err := s.stock.MoveToCentral(ctx, *line); err != nil {
			s.logger.ErrorContext(ctx, "failed to return line to central",
				slog.String("store_id", storeID.String()),
				slog.String("brand", line.Brand),
				slog.String("rating", line.Rating),
				"err", err)
			report.Failed = append(report.Failed, key)
			continue
		}
		report.Moved = append(report.Moved, key)
	}

	s.logger.InfoContext(ctx, "returned store stock to central",
		slog.String("store_id", storeID.String()),
		slog.Int("moved", len(report.Moved)),
		slog.Int("failed", len(report.Failed)))

	if len(report.Moved) > 0 {
		s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: storeID})
		s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: uuid.Nil})
	}

	return report, nil
}

// AnalyzeOpeningBalance partitions an import into would-create and
// would-update lines. Pure read: nothing is mutated.
func (s *StockService) AnalyzeOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine) (*ports.ImportAnalysis, error) {
	if err := s.validateImport(ctx, storeID, lines); err != nil {
		return nil, err
	}

	loc := domain.StoreLocation(storeID)
	analysis := &ports.ImportAnalysis{StoreID: storeID}
	for i := range lines {
		line := lines[i]
		existing, err := s.stock.Find(ctx, loc, line.Brand, line.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze import line: %w", err)
		}
		if existing == nil || existing.Quantity == 0 {
			analysis.New = append(analysis.New, line)
			continue
		}
		analysis.Existing = append(analysis.Existing, ports.ImportUpdate{
			Line:            line,
			CurrentQuantity: existing.Quantity,
		})
	}

	return analysis, nil
}

// CommitOpeningBalance applies an import in one transaction. The commit
// re-reads current state; an analysis produced earlier is advisory only.
func (s *StockService) CommitOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine, mode domain.ImportMode) error {
	if !mode.Valid() {
		return &domain.ValidationError{Field: "mode", Reason: "must be sum or replace"}
	}
	if err := s.validateImport(ctx, storeID, lines); err != nil {
		return err
	}

	if err := s.stock.CommitOpeningBalance(ctx, storeID, lines, mode); err != nil {
		return fmt.Errorf("failed to commit opening balance: %w", err)
	}

	s.logger.InfoContext(ctx, "opening balance committed",
		slog.String("store_id", storeID.String()),
		slog.String("mode", string(mode)),
		slog.Int("lines", len(lines)))

	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: storeID})

	return nil
}

func (s *StockService) validateImport(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine) error {
	if storeID == uuid.Nil {
		return &domain.ValidationError{Field: "store_id", Reason: "is required"}
	}
	if len(lines) == 0 {
		return &domain.ValidationError{Field: "lines", Reason: "must not be empty"}
	}

	seen := make(map[domain.StockKey]bool, len(lines))
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		key := domain.StockKey{Brand: lines[i].Brand, Rating: lines[i].Rating}
		if seen[key] {
			return &domain.ValidationError{Field: "lines", Reason: fmt.Sprintf("duplicate line for %s %s", key.Brand, key.Rating)}
		}
		seen[key] = true
	}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return err
	}

	return nil
}
