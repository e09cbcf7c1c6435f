// internal/core/domain/shipment.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentStatus represents the state of a staged transfer.
type ShipmentStatus string

const (
	ShipmentPending        ShipmentStatus = "pending"
	ShipmentPricesAssigned ShipmentStatus = "prices_assigned"
	ShipmentCompleted      ShipmentStatus = "completed"
	ShipmentCancelled      ShipmentStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s ShipmentStatus) Terminal() bool {
	return s == ShipmentCompleted || s == ShipmentCancelled
}

// Shipment operations that drive state transitions.
const (
	ShipmentOpConfirm = "confirm"
	ShipmentOpCancel  = "cancel"
	ShipmentOpPrice   = "assign prices"
)

// shipmentTransitions is the explicit transition table. Any (state, op) pair
// not listed is rejected.
var shipmentTransitions = map[ShipmentStatus]map[string]ShipmentStatus{
	ShipmentPending: {
		ShipmentOpConfirm: ShipmentCompleted,
		ShipmentOpCancel:  ShipmentCancelled,
		ShipmentOpPrice:   ShipmentPending,
	},
	ShipmentPricesAssigned: {
		ShipmentOpConfirm: ShipmentCompleted,
		ShipmentOpCancel:  ShipmentCancelled,
		ShipmentOpPrice:   ShipmentPricesAssigned,
	},
}

// NextStatus resolves the transition table for (s, op). Rejections carry
// ErrAlreadyTerminal for terminal states and ErrInvalidStateTransition
// otherwise.
func (s ShipmentStatus) NextStatus(op string) (ShipmentStatus, error) {
	if ops, ok := shipmentTransitions[s]; ok {
		if next, ok := ops[op]; ok {
			return next, nil
		}
	}
	return "", &StateTransitionError{From: s, Op: op}
}

// Shipment is a staged movement of stock from central into one store.
// The staged quantities were already removed from central at creation time;
// they re-enter a pool only on confirm (store) or cancel (central).
type Shipment struct {
	ID             uuid.UUID      `json:"id"`
	StoreID        uuid.UUID      `json:"store_id"`
	Status         ShipmentStatus `json:"status"`
	TotalLineItems int            `json:"total_line_items"`
	TotalUnits     int            `json:"total_units"`
	Lines          []ShipmentLine `json:"lines,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// ShipmentLine is one (brand, rating) slice of a shipment. Quantity and the
// original cost/price snapshots are fixed at staging time; only StorePrice
// is ever written afterwards.
type ShipmentLine struct {
	ID            uuid.UUID        `json:"id"`
	ShipmentID    uuid.UUID        `json:"shipment_id"`
	Brand         string           `json:"brand"`
	Rating        string           `json:"rating"`
	Quantity      int              `json:"quantity"`
	OriginalCost  decimal.Decimal  `json:"original_cost"`
	OriginalPrice decimal.Decimal  `json:"original_price"`
	StorePrice    *decimal.Decimal `json:"store_price,omitempty"`
}

// Priced reports whether the line has been assigned a store price.
func (l *ShipmentLine) Priced() bool {
	return l.StorePrice != nil
}

// FullyPriced re-derives pricing completeness from the lines. It is never
// stored; confirm re-checks it inside its own transaction.
func (s *Shipment) FullyPriced() bool {
	if len(s.Lines) == 0 {
		return false
	}
	for i := range s.Lines {
		if !s.Lines[i].Priced() {
			return false
		}
	}
	return true
}

// RecomputeTotals refreshes the denormalized aggregates from the lines.
// Totals are derived cache fields, never sources of truth.
func (s *Shipment) RecomputeTotals() {
	s.TotalLineItems = len(s.Lines)
	s.TotalUnits = 0
	for i := range s.Lines {
		s.TotalUnits += s.Lines[i].Quantity
	}
}

// ShipmentRequestLine is a caller-supplied line for staging a shipment.
type ShipmentRequestLine struct {
	Brand    string `json:"brand"`
	Rating   string `json:"rating"`
	Quantity int    `json:"quantity"`
}

// Validate checks a requested line before any stock is touched.
func (l *ShipmentRequestLine) Validate() error {
	if l.Brand == "" {
		return &ValidationError{Field: "brand", Reason: "is required"}
	}
	if l.Rating == "" {
		return &ValidationError{Field: "rating", Reason: "is required"}
	}
	if l.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}
