// internal/core/services/shipment.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// ShipmentService drives the Central-to-Store transfer state machine.
type ShipmentService struct {
	shipments ports.ShipmentRepository
	stores    ports.StoreRepository
	notifier  ports.ChangeNotifier
	logger    *slog.Logger
}

// Statically assert that *ShipmentService implements the ShipmentService interface.
var _ ports.ShipmentService = (*ShipmentService)(nil)

// NewShipmentService creates a new shipment service
func NewShipmentService(shipments ports.ShipmentRepository, stores ports.StoreRepository, notifier ports.ChangeNotifier, logger *slog.Logger) *ShipmentService {
	return &ShipmentService{
		shipments: shipments,
		stores:    stores,
		notifier:  notifier,
		logger:    logger.With(slog.String("service", "shipment")),
	}
}

// Create stages a new shipment, reserving every requested line from central.
// Validation happens before any stock is touched.
func (s *ShipmentService) Create(ctx context.Context, storeID uuid.UUID, lines []domain.ShipmentRequestLine) (*domain.Shipment, error) {
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

	shipment := &domain.Shipment{StoreID: storeID}
	for i := range lines {
		shipment.Lines = append(shipment.Lines, domain.ShipmentLine{
			Brand:    lines[i].Brand,
			Rating:   lines[i].Rating,
			Quantity: lines[i].Quantity,
		})
	}

	if err := s.shipments.CreateStaged(ctx, shipment); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: uuid.Nil})
	s.notifier.Notify(ctx, ports.Change{Entity: "shipment", StoreID: storeID, ID: shipment.ID})

	return shipment, nil
}

// AssignPrices sets store prices on shipment lines. Pricing can arrive in
// several partial batches; the shipment advances once every line is priced.
func (s *ShipmentService) AssignPrices(ctx context.Context, shipmentID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) (*domain.Shipment, error) {
	if len(prices) == 0 {
		return nil, &domain.ValidationError{Field: "prices", Reason: "must not be empty"}
	}

	shipment, err := s.shipments.AssignPrices(ctx, shipmentID, prices)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "shipment prices assigned",
		slog.String("shipment_id", shipmentID.String()),
		slog.Int("lines", len(prices)),
		slog.String("status", string(shipment.Status)))

	s.notifier.Notify(ctx, ports.Change{Entity: "shipment", StoreID: shipment.StoreID, ID: shipment.ID})

	return shipment, nil
}

// Confirm completes the shipment and releases its units into the store pool.
func (s *ShipmentService) Confirm(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	shipment, err := s.shipments.Confirm(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, ports.Change{Entity: "shipment", StoreID: shipment.StoreID, ID: shipment.ID})
	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: shipment.StoreID})

	return shipment, nil
}

// Cancel abandons the shipment and returns its units to central.
func (s *ShipmentService) Cancel(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	shipment, err := s.shipments.Cancel(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, ports.Change{Entity: "shipment", StoreID: shipment.StoreID, ID: shipment.ID})
	s.notifier.Notify(ctx, ports.Change{Entity: "stock", StoreID: uuid.Nil})

	return shipment, nil
}

// GetByID retrieves a shipment with its lines.
func (s *ShipmentService) GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	return s.shipments.FindByID(ctx, shipmentID)
}

// List retrieves a page of shipments.
func (s *ShipmentService) List(ctx context.Context, params ports.ShipmentListParams) (*ports.ShipmentListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	shipments, total, err := s.shipments.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ports.ShipmentListResult{
		Shipments:  shipments,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
	}, nil
}
