// internal/workers/summary_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	redis_a "github.com/voltdepot/stock-be/internal/adapters/redis_adapter"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// SummaryProcessor invalidates cached summary views after stock mutations
type SummaryProcessor struct {
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewSummaryProcessor creates a new summary processor
func NewSummaryProcessor(cache ports.CacheRepository, logger *slog.Logger) *SummaryProcessor {
	return &SummaryProcessor{
		cache:  cache,
		logger: logger.With(slog.String("processor", "summary")),
	}
}

// RefreshSummary drops the cached summaries touched by a mutation so the
// next read recomputes them from the database.
func (p *SummaryProcessor) RefreshSummary(ctx context.Context, t *asynq.Task) error {
	var payload SummaryRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.StoreID == uuid.Nil {
		pattern := redis_a.BuildKey(redis_a.PrefixSummary, "*")
		if err := p.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate summaries: %w", err)
		}
		p.logger.InfoContext(ctx, "all summary caches invalidated")
		return nil
	}

	storeKey := redis_a.BuildKey(redis_a.PrefixSummary, "store", payload.StoreID.String())
	systemKey := redis_a.BuildKey(redis_a.PrefixSummary, "system")

	for _, key := range []string{storeKey, systemKey} {
		if err := p.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", key, err)
		}
	}

	p.logger.InfoContext(ctx, "summary caches invalidated",
		slog.String("store_id", payload.StoreID.String()))
	return nil
}
