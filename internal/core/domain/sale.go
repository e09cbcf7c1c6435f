// internal/core/domain/sale.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a store transaction that permanently removes units from the
// system. Totals are recomputed from the lines at creation.
type Sale struct {
	ID           uuid.UUID       `json:"id"`
	StoreID      uuid.UUID       `json:"store_id"`
	SaleDate     time.Time       `json:"sale_date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Profit       decimal.Decimal `json:"profit"`
	Notes        string          `json:"notes,omitempty"`
	Lines        []SaleLine      `json:"lines,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SaleLine is one sold (brand, rating) slice. Price and cost are snapshots
// supplied at sale time; front-line price negotiation means they need not
// match the stored store price. Immutable after creation.
type SaleLine struct {
	ID        uuid.UUID       `json:"id"`
	SaleID    uuid.UUID       `json:"sale_id"`
	Brand     string          `json:"brand"`
	Rating    string          `json:"rating"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Profit    decimal.Decimal `json:"profit"`
}

// Compute fills the derived subtotal and profit for the line.
func (l *SaleLine) Compute() {
	qty := decimal.NewFromInt(int64(l.Quantity))
	l.Subtotal = l.UnitPrice.Mul(qty)
	l.Profit = l.UnitPrice.Sub(l.UnitCost).Mul(qty)
}

// Validate checks a sale line before any stock is touched.
func (l *SaleLine) Validate() error {
	if l.Brand == "" {
		return &ValidationError{Field: "brand", Reason: "is required"}
	}
	if l.Rating == "" {
		return &ValidationError{Field: "rating", Reason: "is required"}
	}
	if l.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if l.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Reason: "cannot be negative"}
	}
	if l.UnitCost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Reason: "cannot be negative"}
	}
	return nil
}

// RecomputeTotals refreshes the sale aggregates from its lines.
func (s *Sale) RecomputeTotals() {
	s.TotalRevenue = decimal.Zero
	s.TotalCost = decimal.Zero
	for i := range s.Lines {
		qty := decimal.NewFromInt(int64(s.Lines[i].Quantity))
		s.TotalRevenue = s.TotalRevenue.Add(s.Lines[i].Subtotal)
		s.TotalCost = s.TotalCost.Add(s.Lines[i].UnitCost.Mul(qty))
	}
	s.Profit = s.TotalRevenue.Sub(s.TotalCost)
}

// PrepareForStorage assigns identifiers, computes line and aggregate
// figures, and stamps timestamps.
func (s *Sale) PrepareForStorage() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	if s.SaleDate.IsZero() {
		s.SaleDate = now
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	for i := range s.Lines {
		if s.Lines[i].ID == uuid.Nil {
			s.Lines[i].ID = uuid.New()
		}
		s.Lines[i].SaleID = s.ID
		s.Lines[i].Compute()
	}
	s.RecomputeTotals()
}
