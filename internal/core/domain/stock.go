// internal/core/domain/stock.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Location identifies a stock pool. The zero UUID is the central warehouse;
// any other value is a store ID.
type Location struct {
	StoreID uuid.UUID
}

// Central is the warehouse-level stock pool.
var Central = Location{}

// StoreLocation returns the stock pool of a single store.
func StoreLocation(storeID uuid.UUID) Location {
	return Location{StoreID: storeID}
}

// IsCentral reports whether the location is the central warehouse.
func (l Location) IsCentral() bool {
	return l.StoreID == uuid.Nil
}

func (l Location) String() string {
	if l.IsCentral() {
		return "central"
	}
	return "store:" + l.StoreID.String()
}

// StockLine is a quantity counter for one battery kind at one location.
// Units of the same (brand, rating) are fungible; the line is the unit of
// concurrency control. Quantity never goes negative.
type StockLine struct {
	StoreID   uuid.UUID       `json:"store_id"`
	Brand     string          `json:"brand"`
	Rating    string          `json:"rating"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Location returns the pool this line belongs to.
func (l *StockLine) Location() Location {
	return Location{StoreID: l.StoreID}
}

// Validate performs domain validation on a stock line.
func (l *StockLine) Validate() error {
	if l.Brand == "" {
		return &ValidationError{Field: "brand", Reason: "is required"}
	}
	if l.Rating == "" {
		return &ValidationError{Field: "rating", Reason: "is required"}
	}
	if l.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "cannot be negative"}
	}
	if l.UnitCost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Reason: "cannot be negative"}
	}
	if l.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Reason: "cannot be negative"}
	}
	return nil
}

// StockKey identifies a battery kind independent of location.
type StockKey struct {
	Brand  string `json:"brand"`
	Rating string `json:"rating"`
}

// PriceSnapshot carries the unit cost/price captured by a reserve operation,
// before the decrement was applied.
type PriceSnapshot struct {
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ImportMode selects how an opening-balance line reconciles with an
// existing store line.
type ImportMode string

const (
	// ImportModeSum adds the imported quantity to the existing quantity.
	ImportModeSum ImportMode = "sum"
	// ImportModeReplace treats the imported quantity as authoritative.
	ImportModeReplace ImportMode = "replace"
)

// Valid reports whether the mode is one of the supported reconciliations.
func (m ImportMode) Valid() bool {
	return m == ImportModeSum || m == ImportModeReplace
}

// ImportLine is one externally reported opening-balance row.
// Price is authoritative: it always overwrites the stored unit price.
type ImportLine struct {
	Brand    string          `json:"brand"`
	Rating   string          `json:"rating"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Validate checks an import line before analysis or commit.
func (l *ImportLine) Validate() error {
	if l.Brand == "" {
		return &ValidationError{Field: "brand", Reason: "is required"}
	}
	if l.Rating == "" {
		return &ValidationError{Field: "rating", Reason: "is required"}
	}
	if l.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if l.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	return nil
}
