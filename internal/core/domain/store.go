// internal/core/domain/store.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store is a retail location with its own stock pool. Authorization for a
// given store is handled upstream; the engine trusts the store IDs it is
// handed.
type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs domain validation on the store.
func (s *Store) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

// PrepareForStorage assigns the identifier and timestamps.
func (s *Store) PrepareForStorage() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
}
