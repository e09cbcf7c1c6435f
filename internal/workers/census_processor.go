// internal/workers/census_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/voltdepot/stock-be/internal/adapters/db"
)

// CensusProcessor records periodic unit-census snapshots of the ledger
type CensusProcessor struct {
	db     *db.Database
	logger *slog.Logger
}

// NewCensusProcessor creates a new census processor
func NewCensusProcessor(database *db.Database, logger *slog.Logger) *CensusProcessor {
	return &CensusProcessor{
		db:     database,
		logger: logger.With(slog.String("processor", "census")),
	}
}

// RecordCensus counts units in every pool and logs the snapshot. Units only
// move between pools, so operators can track these numbers over time to spot
// ledger drift that individual operations would hide.
func (p *CensusProcessor) RecordCensus(ctx context.Context, t *asynq.Task) error {
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE store_id = $1), 0) AS central_units,
			COALESCE(SUM(quantity) FILTER (WHERE store_id <> $1), 0) AS store_units
		FROM stock_lines`

	var centralUnits, storeUnits int64
	if err := p.db.QueryRow(ctx, query, uuid.Nil).Scan(&centralUnits, &storeUnits); err != nil {
		return fmt.Errorf("failed to count stock units: %w", err)
	}

	stagedQuery := `
		SELECT COALESCE(SUM(sl.quantity), 0)
		FROM shipment_lines sl
		JOIN shipments s ON s.id = sl.shipment_id
		WHERE s.status NOT IN ('completed', 'cancelled')`

	var stagedUnits int64
	if err := p.db.QueryRow(ctx, stagedQuery).Scan(&stagedUnits); err != nil {
		return fmt.Errorf("failed to count staged units: %w", err)
	}

	soldQuery := `SELECT COALESCE(SUM(quantity), 0) FROM sale_lines`

	var soldUnits int64
	if err := p.db.QueryRow(ctx, soldQuery).Scan(&soldUnits); err != nil {
		return fmt.Errorf("failed to count sold units: %w", err)
	}

	p.logger.InfoContext(ctx, "unit census recorded",
		slog.Int64("central_units", centralUnits),
		slog.Int64("store_units", storeUnits),
		slog.Int64("staged_units", stagedUnits),
		slog.Int64("sold_units", soldUnits),
		slog.Int64("live_total", centralUnits+storeUnits+stagedUnits))

	return nil
}
