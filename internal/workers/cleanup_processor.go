// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/voltdepot/stock-be/internal/core/ports"
)

// CleanupProcessor handles stock ledger maintenance tasks
type CleanupProcessor struct {
	stock  ports.StockRepository
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(stock ports.StockRepository, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		stock:  stock,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// PruneZeroStock deletes stock lines whose quantity has drained to zero.
// Reservations leave the row in place so its price snapshot survives the
// transaction; this task sweeps the leftovers afterwards.
func (p *CleanupProcessor) PruneZeroStock(ctx context.Context, t *asynq.Task) error {
	pruned, err := p.stock.PruneZero(ctx)
	if err != nil {
		return fmt.Errorf("failed to prune zero-quantity stock lines: %w", err)
	}

	p.logger.InfoContext(ctx, "zero-quantity stock lines pruned",
		slog.Int64("rows_deleted", pruned))
	return nil
}
