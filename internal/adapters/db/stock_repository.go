// internal/adapters/db/stock_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// execer is the statement surface shared by pools and transactions, so the
// ledger primitives run identically inside and outside a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const reserveSQL = `
	UPDATE stock_lines
	SET quantity = quantity - $4, updated_at = now()
	WHERE store_id = $1 AND brand = $2 AND rating = $3 AND quantity >= $4
	RETURNING unit_cost, unit_price`

const releaseKeepSQL = `
	INSERT INTO stock_lines (store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	ON CONFLICT (store_id, brand, rating) DO UPDATE
	SET quantity = stock_lines.quantity + EXCLUDED.quantity,
	    updated_at = now()`

const releaseOverwriteSQL = `
	INSERT INTO stock_lines (store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	ON CONFLICT (store_id, brand, rating) DO UPDATE
	SET quantity = stock_lines.quantity + EXCLUDED.quantity,
	    unit_cost = EXCLUDED.unit_cost,
	    unit_price = EXCLUDED.unit_price,
	    updated_at = now()`

const importSumSQL = `
	INSERT INTO stock_lines (store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	ON CONFLICT (store_id, brand, rating) DO UPDATE
	SET quantity = stock_lines.quantity + EXCLUDED.quantity,
	    unit_price = EXCLUDED.unit_price,
	    updated_at = now()`

const replaceQuantitySQL = `
	INSERT INTO stock_lines (store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	ON CONFLICT (store_id, brand, rating) DO UPDATE
	SET quantity = EXCLUDED.quantity,
	    unit_price = EXCLUDED.unit_price,
	    updated_at = now()`

// reserveLine is the compare-and-decrement primitive. The conditional
// UPDATE either applies fully or touches nothing; RETURNING captures the
// cost/price snapshot since the decrement leaves them unchanged.
func reserveLine(ctx context.Context, q execer, loc domain.Location, brand, rating string, qty int) (domain.PriceSnapshot, error) {
	var snap domain.PriceSnapshot
	err := q.QueryRow(ctx, reserveSQL, loc.StoreID, brand, rating, qty).
		Scan(&snap.UnitCost, &snap.UnitPrice)
	if err == nil {
		return snap, nil
	}
	if err != pgx.ErrNoRows {
		return snap, fmt.Errorf("failed to reserve stock: %w", err)
	}

	// Zero rows: line missing or short. Report the available quantity;
	// a missing line behaves as quantity zero.
	var available int
	err = q.QueryRow(ctx,
		`SELECT quantity FROM stock_lines WHERE store_id = $1 AND brand = $2 AND rating = $3`,
		loc.StoreID, brand, rating).Scan(&available)
	if err != nil && err != pgx.ErrNoRows {
		return snap, fmt.Errorf("failed to read stock line: %w", err)
	}

	return snap, &domain.InsufficientStockError{
		Location:  loc,
		Brand:     brand,
		Rating:    rating,
		Requested: qty,
		Available: available,
	}
}

// releaseLine is the increment primitive. A single upsert creates the line
// when absent; overwrite decides the cost/price policy on existing lines.
func releaseLine(ctx context.Context, q execer, loc domain.Location, brand, rating string, qty int, cost, price decimal.Decimal, overwrite bool) error {
	sql := releaseKeepSQL
	if overwrite {
		sql = releaseOverwriteSQL
	}
	if _, err := q.Exec(ctx, sql, loc.StoreID, brand, rating, qty, cost, price); err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	return nil
}

// stockRepository implements ports.StockRepository
type stockRepository struct {
	q      Querier
	logger *slog.Logger
}

// NewStockRepository creates a new stock ledger repository
func NewStockRepository(q Querier, logger *slog.Logger) ports.StockRepository {
	return &stockRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "stock")),
	}
}

// Reserve atomically decrements a line, failing when quantity is short.
func (r *stockRepository) Reserve(ctx context.Context, loc domain.Location, brand, rating string, qty int) (domain.PriceSnapshot, error) {
	snap, err := reserveLine(ctx, r.q, loc, brand, rating, qty)
	if err != nil {
		return snap, err
	}

	r.logger.DebugContext(ctx, "stock reserved",
		slog.String("location", loc.String()),
		slog.String("brand", brand),
		slog.String("rating", rating),
		slog.Int("quantity", qty))

	return snap, nil
}

// Release atomically increments a line, creating it when absent.
func (r *stockRepository) Release(ctx context.Context, loc domain.Location, brand, rating string, qty int, cost, price decimal.Decimal, overwrite bool) error {
	if err := releaseLine(ctx, r.q, loc, brand, rating, qty, cost, price, overwrite); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "stock released",
		slog.String("location", loc.String()),
		slog.String("brand", brand),
		slog.String("rating", rating),
		slog.Int("quantity", qty))

	return nil
}

// MoveToCentral relocates one full store line back into central. The
// reserve and release run in one transaction so the unit count never dips.
func (r *stockRepository) MoveToCentral(ctx context.Context, line domain.StockLine) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		snap, err := reserveLine(ctx, tx, line.Location(), line.Brand, line.Rating, line.Quantity)
		if err != nil {
			return err
		}
		// Central keeps its own cost/price when the line already exists;
		// the store snapshot only seeds a missing central line.
		return releaseLine(ctx, tx, domain.Central, line.Brand, line.Rating, line.Quantity,
			snap.UnitCost, snap.UnitPrice, false)
	})
}

// CommitOpeningBalance applies an import in one transaction, re-validating
// against current state rather than trusting a stale analysis.
func (r *stockRepository) CommitOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine, mode domain.ImportMode) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		for i := range lines {
			l := &lines[i]
			switch mode {
			case domain.ImportModeSum:
				// Adds to the existing quantity; price is authoritative
				// either way, cost stays as recorded.
				if _, err := tx.Exec(ctx, importSumSQL,
					storeID, l.Brand, l.Rating, l.Quantity, decimal.Zero, l.Price); err != nil {
					return fmt.Errorf("failed to sum stock line: %w", err)
				}
			case domain.ImportModeReplace:
				if _, err := tx.Exec(ctx, replaceQuantitySQL,
					storeID, l.Brand, l.Rating, l.Quantity, decimal.Zero, l.Price); err != nil {
					return fmt.Errorf("failed to replace stock line: %w", err)
				}
			default:
				return &domain.ValidationError{Field: "mode", Reason: "must be sum or replace"}
			}
		}
		return nil
	})
}

// Find retrieves a single stock line, nil when absent.
func (r *stockRepository) Find(ctx context.Context, loc domain.Location, brand, rating string) (*domain.StockLine, error) {
	query := `
		SELECT store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at
		FROM stock_lines
		WHERE store_id = $1 AND brand = $2 AND rating = $3`

	line := &domain.StockLine{}
	err := r.q.QueryRow(ctx, query, loc.StoreID, brand, rating).Scan(
		&line.StoreID, &line.Brand, &line.Rating, &line.Quantity,
		&line.UnitCost, &line.UnitPrice, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stock line: %w", err)
	}

	return line, nil
}

// ListByLocation returns the location's lines with stock on hand.
// Zero-quantity lines are treated as absent for selection purposes.
func (r *stockRepository) ListByLocation(ctx context.Context, loc domain.Location) ([]domain.StockLine, error) {
	query := `
		SELECT store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at
		FROM stock_lines
		WHERE store_id = $1 AND quantity > 0
		ORDER BY brand, rating`

	return r.scanLines(ctx, query, loc.StoreID)
}

// ListAll returns every line with stock on hand across all locations.
func (r *stockRepository) ListAll(ctx context.Context) ([]domain.StockLine, error) {
	query := `
		SELECT store_id, brand, rating, quantity, unit_cost, unit_price, created_at, updated_at
		FROM stock_lines
		WHERE quantity > 0
		ORDER BY store_id, brand, rating`

	return r.scanLines(ctx, query)
}

func (r *stockRepository) scanLines(ctx context.Context, query string, args ...interface{}) ([]domain.StockLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.StockLine
	for rows.Next() {
		var line domain.StockLine
		if err := rows.Scan(
			&line.StoreID, &line.Brand, &line.Rating, &line.Quantity,
			&line.UnitCost, &line.UnitPrice, &line.CreatedAt, &line.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lines, nil
}

// PruneZero deletes drained lines. Selection queries already skip them, so
// pruning is housekeeping, not a behavior change.
func (r *stockRepository) PruneZero(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_lines WHERE quantity = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stock lines: %w", err)
	}

	if tag.RowsAffected() > 0 {
		r.logger.InfoContext(ctx, "pruned drained stock lines",
			slog.Int64("count", tag.RowsAffected()))
	}

	return tag.RowsAffected(), nil
}
