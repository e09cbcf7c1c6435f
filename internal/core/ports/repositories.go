// internal/core/ports/repositories.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
)

// StockRepository is the persistence port for the stock ledger. Reserve and
// Release are the only two mutation primitives on a quantity counter; both
// are implemented as single conditional statements so concurrent callers on
// the same (location, brand, rating) key cannot over-draw a line.
type StockRepository interface {
	// Reserve decrements the line by qty and returns the pre-operation
	// cost/price snapshot. It fails with domain.ErrInsufficientStock when
	// the available quantity is short, leaving the line untouched.
	Reserve(ctx context.Context, loc domain.Location, brand, rating string, qty int) (domain.PriceSnapshot, error)

	// Release increments the line by qty, creating it when absent with the
	// given cost/price. When the line exists, overwrite decides whether the
	// stored cost/price are replaced or kept.
	Release(ctx context.Context, loc domain.Location, brand, rating string, qty int, cost, price decimal.Decimal, overwrite bool) error

	// MoveToCentral relocates one full store line back into central in a
	// single transaction, seeding the central line from the store line when
	// central has none.
	MoveToCentral(ctx context.Context, line domain.StockLine) error

	// CommitOpeningBalance applies an opening-balance import in one
	// transaction, re-validating against current state. Price is always
	// overwritten; mode governs the quantity reconciliation.
	CommitOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine, mode domain.ImportMode) error

	Find(ctx context.Context, loc domain.Location, brand, rating string) (*domain.StockLine, error)
	// ListByLocation returns the location's lines with quantity > 0.
	ListByLocation(ctx context.Context, loc domain.Location) ([]domain.StockLine, error)
	// ListAll returns every line with quantity > 0 across central and stores.
	ListAll(ctx context.Context) ([]domain.StockLine, error)
	// PruneZero deletes drained lines and reports how many were removed.
	PruneZero(ctx context.Context) (int64, error)
}

// ShipmentListParams filters the shipment listing.
type ShipmentListParams struct {
	StoreID  *uuid.UUID
	Status   domain.ShipmentStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// ShipmentRepository is the persistence port for staged transfers. The
// composite operations run as single transactions: a failure inside any of
// them leaves no partial reservation behind.
type ShipmentRepository interface {
	// CreateStaged reserves every requested line from central and inserts
	// the shipment with its lines, all-or-nothing.
	CreateStaged(ctx context.Context, shipment *domain.Shipment) error

	// AssignPrices sets store prices on the given lines and advances the
	// shipment to PricesAssigned when re-derivation finds every line
	// priced. Terminal shipments reject.
	AssignPrices(ctx context.Context, shipmentID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) (*domain.Shipment, error)

	// Confirm transitions to Completed and releases every line into the
	// store pool at its store price. The pricing check happens inside the
	// same transaction as the status change.
	Confirm(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)

	// Cancel transitions to Cancelled and releases every line back into
	// central at its original snapshots.
	Cancel(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)

	FindByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	List(ctx context.Context, params ShipmentListParams) ([]domain.Shipment, int64, error)
}

// SaleListParams filters the sale listing.
type SaleListParams struct {
	StoreID  *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// SaleRepository is the persistence port for store sales.
type SaleRepository interface {
	// Register reserves every line from the store pool and inserts the
	// sale with its lines, all-or-nothing.
	Register(ctx context.Context, sale *domain.Sale) error

	// Delete releases every line back into the store pool (seeding pruned
	// lines from the sale snapshots) and removes the sale and its lines.
	Delete(ctx context.Context, saleID uuid.UUID) error

	FindByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, params SaleListParams) ([]domain.Sale, int64, error)
}

// ExpenseListParams filters the expense listing.
type ExpenseListParams struct {
	StoreID  *uuid.UUID
	Category string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// ExpenseRepository is the persistence port for the append/delete-only
// expense ledger.
type ExpenseRepository interface {
	Save(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, expenseID uuid.UUID) error
	FindByID(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error)
	List(ctx context.Context, params ExpenseListParams) ([]domain.Expense, int64, error)
	// Categories returns distinct categories for autocomplete. A zero
	// storeID spans every store.
	Categories(ctx context.Context, storeID uuid.UUID) ([]string, error)
	TotalByStore(ctx context.Context, storeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error)
}

// StoreRepository is the persistence port for the store registry.
type StoreRepository interface {
	Save(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, storeID uuid.UUID) (*domain.Store, error)
	FindAll(ctx context.Context) ([]domain.Store, error)
}
