// internal/core/ports/services.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
)

// ImportAnalysis partitions an opening-balance import into lines that would
// create a new store line and lines that would update an existing one. The
// analysis is pure: producing it mutates nothing, and the commit re-validates
// against current state rather than trusting it.
type ImportAnalysis struct {
	StoreID  uuid.UUID           `json:"store_id"`
	New      []domain.ImportLine `json:"new"`
	Existing []ImportUpdate      `json:"existing"`
}

// ImportUpdate pairs an import line with the store quantity it would touch.
type ImportUpdate struct {
	Line            domain.ImportLine `json:"line"`
	CurrentQuantity int               `json:"current_quantity"`
}

// ReturnReport summarizes a best-effort bulk return. A partial failure means
// "some lines moved, re-run to finish", not a clean failure.
type ReturnReport struct {
	Moved  []domain.StockKey `json:"moved"`
	Failed []domain.StockKey `json:"failed"`
}

// StockService owns the ledger-level operations and the store-inventory
// bulk operations.
type StockService interface {
	ReceiveCentralStock(ctx context.Context, lines []domain.StockLine) error
	StockByLocation(ctx context.Context, loc domain.Location) ([]domain.StockLine, error)
	ReturnAllToCentral(ctx context.Context, storeID uuid.UUID) (*ReturnReport, error)
	AnalyzeOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine) (*ImportAnalysis, error)
	CommitOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine, mode domain.ImportMode) error
}

// ShipmentService drives the transfer state machine.
type ShipmentService interface {
	Create(ctx context.Context, storeID uuid.UUID, lines []domain.ShipmentRequestLine) (*domain.Shipment, error)
	AssignPrices(ctx context.Context, shipmentID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) (*domain.Shipment, error)
	Confirm(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	Cancel(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	List(ctx context.Context, params ShipmentListParams) (*ShipmentListResult, error)
}

// ShipmentListResult is a page of shipments.
type ShipmentListResult struct {
	Shipments  []domain.Shipment `json:"shipments"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
}

// SaleService owns sale registration and its compensating delete.
type SaleService interface {
	Register(ctx context.Context, storeID uuid.UUID, lines []domain.SaleLine, notes string) (*domain.Sale, error)
	Delete(ctx context.Context, saleID uuid.UUID) error
	GetByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, params SaleListParams) (*SaleListResult, error)
}

// SaleListResult is a page of sales.
type SaleListResult struct {
	Sales      []domain.Sale `json:"sales"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
}

// ExpenseService owns the append/delete-only expense ledger.
type ExpenseService interface {
	Record(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, expenseID uuid.UUID) error
	GetByID(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error)
	List(ctx context.Context, params ExpenseListParams) (*ExpenseListResult, error)
	CategorySuggestions(ctx context.Context, storeID uuid.UUID) ([]string, error)
	TotalByStore(ctx context.Context, storeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error)
}

// ExpenseListResult is a page of expenses.
type ExpenseListResult struct {
	Expenses   []domain.Expense `json:"expenses"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
}
