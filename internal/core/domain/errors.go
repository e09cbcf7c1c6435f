// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the stock engine. Callers classify failures with
// errors.Is; richer per-line detail travels in the typed errors below.
var (
	ErrNotFound               = errors.New("not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrIncompletePricing      = errors.New("shipment has unpriced lines")
	ErrAlreadyTerminal        = errors.New("shipment already in terminal state")
	ErrValidation             = errors.New("validation failed")
)

// InsufficientStockError reports a shortage on a single stock key.
// A missing line behaves as a line with zero quantity.
type InsufficientStockError struct {
	Location  Location
	Brand     string
	Rating    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s/%s at %s: requested %d, available %d",
		e.Brand, e.Rating, e.Location, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StateTransitionError reports a rejected shipment transition.
type StateTransitionError struct {
	From ShipmentStatus
	Op   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s shipment in state %q", e.Op, e.From)
}

func (e *StateTransitionError) Unwrap() error {
	if e.From.Terminal() {
		return ErrAlreadyTerminal
	}
	return ErrInvalidStateTransition
}

// ValidationError wraps a field-level input problem.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
