// internal/core/domain/expense.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a per-store financial record with no stock interaction.
// The ledger is append/delete-only. Categories are free text; previously
// used values are offered back as autocomplete suggestions.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate performs domain validation on the expense.
func (e *Expense) Validate() error {
	if e.StoreID == uuid.Nil {
		return &ValidationError{Field: "store_id", Reason: "is required"}
	}
	if e.Category == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

// PrepareForStorage assigns the identifier and timestamps.
func (e *Expense) PrepareForStorage() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = now
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}
