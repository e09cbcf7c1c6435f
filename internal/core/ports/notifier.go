// internal/core/ports/notifier.go
package ports

import (
	"context"

	"github.com/google/uuid"
)

// Change describes a record-set mutation. It is a hint to re-fetch
// authoritative state, never the state itself.
type Change struct {
	Entity  string    `json:"entity"` // stock, shipment, sale, expense
	StoreID uuid.UUID `json:"store_id"`
	ID      uuid.UUID `json:"id,omitempty"`
}

// ChangeNotifier fans out change hints to dependent views. Delivery is
// fire-and-forget and best-effort: implementations log failures and never
// surface them to the mutating caller.
type ChangeNotifier interface {
	Notify(ctx context.Context, change Change)
}
