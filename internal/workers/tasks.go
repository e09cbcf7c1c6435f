// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeRefreshSummary = "summary:refresh"
	TypePruneZeroStock = "stock:prune_zero"
	TypeCensusAudit    = "census:audit"
)

// SummaryRefreshPayload identifies which summary caches to invalidate.
// A zero StoreID means every summary, store and system alike.
type SummaryRefreshPayload struct {
	StoreID uuid.UUID `json:"store_id"`
}

// NewSummaryRefreshTask creates a task that invalidates cached summaries.
func NewSummaryRefreshTask(storeID uuid.UUID) (*asynq.Task, error) {
	b, err := json.Marshal(SummaryRefreshPayload{StoreID: storeID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SummaryRefreshPayload: %w", err)
	}
	return asynq.NewTask(TypeRefreshSummary, b), nil
}

// NewPruneZeroStockTask creates a task that deletes zero-quantity stock lines.
func NewPruneZeroStockTask() *asynq.Task {
	return asynq.NewTask(TypePruneZeroStock, nil)
}

// NewCensusAuditTask creates a task that records a unit census snapshot.
func NewCensusAuditTask() *asynq.Task {
	return asynq.NewTask(TypeCensusAudit, nil)
}
