// internal/adapters/db/sale_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	q      Querier
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(q Querier, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "sale")),
	}
}

// Register reserves every sold line from the store pool and inserts the sale
// inside one transaction. Unit cost and unit price on each line are the
// caller's negotiated figures; the reservation only checks and decrements
// quantity, its price snapshot is not consulted.
func (r *saleRepository) Register(ctx context.Context, sale *domain.Sale) error {
	sale.PrepareForStorage()
	store := domain.StoreLocation(sale.StoreID)

	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		for i := range sale.Lines {
			line := &sale.Lines[i]
			if _, err := reserveLine(ctx, tx, store, line.Brand, line.Rating, line.Quantity); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO sales (id, store_id, sale_date, total_revenue, total_cost, profit, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sale.ID, sale.StoreID, sale.SaleDate,
			sale.TotalRevenue, sale.TotalCost, sale.Profit,
			sale.Notes, sale.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}

		for i := range sale.Lines {
			line := &sale.Lines[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO sale_lines (id, sale_id, brand, rating, quantity, unit_price, unit_cost, subtotal, profit)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				line.ID, line.SaleID, line.Brand, line.Rating, line.Quantity,
				line.UnitPrice, line.UnitCost, line.Subtotal, line.Profit)
			if err != nil {
				return fmt.Errorf("failed to insert sale line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "sale registered",
		slog.String("sale_id", sale.ID.String()),
		slog.String("store_id", sale.StoreID.String()),
		slog.String("total_revenue", sale.TotalRevenue.String()))

	return nil
}

// Delete reverses a sale: every line re-enters the store pool, then the sale
// and its lines are removed, all in one transaction. Current store prices are
// kept; the sale's snapshots only seed lines that were pruned in between.
func (r *saleRepository) Delete(ctx context.Context, saleID uuid.UUID) error {
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		var storeID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT store_id FROM sales WHERE id = $1 FOR UPDATE`, saleID).Scan(&storeID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return fmt.Errorf("sale %s: %w", saleID, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to lock sale: %w", err)
		}

		lines, err := scanSaleLines(ctx, tx, saleID)
		if err != nil {
			return err
		}

		store := domain.StoreLocation(storeID)
		for i := range lines {
			line := &lines[i]
			if err := releaseLine(ctx, tx, store, line.Brand, line.Rating, line.Quantity,
				line.UnitCost, line.UnitPrice, false); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, saleID); err != nil {
			return fmt.Errorf("failed to delete sale lines: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, saleID); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "sale deleted",
		slog.String("sale_id", saleID.String()))

	return nil
}

// FindByID retrieves a sale with its lines.
func (r *saleRepository) FindByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	query := `
		SELECT id, store_id, sale_date, total_revenue, total_cost, profit, notes, created_at
		FROM sales
		WHERE id = $1`

	sale := &domain.Sale{}
	err := r.q.QueryRow(ctx, query, saleID).Scan(
		&sale.ID, &sale.StoreID, &sale.SaleDate,
		&sale.TotalRevenue, &sale.TotalCost, &sale.Profit,
		&sale.Notes, &sale.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("sale %s: %w", saleID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	sale.Lines, err = scanSaleLines(ctx, r.q, saleID)
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func scanSaleLines(ctx context.Context, q queryer, saleID uuid.UUID) ([]domain.SaleLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, sale_id, brand, rating, quantity, unit_price, unit_cost, subtotal, profit
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY brand, rating`,
		saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.SaleLine
	for rows.Next() {
		var line domain.SaleLine
		if err := rows.Scan(
			&line.ID, &line.SaleID, &line.Brand, &line.Rating, &line.Quantity,
			&line.UnitPrice, &line.UnitCost, &line.Subtotal, &line.Profit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sale line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lines, nil
}

// List retrieves sales with filtering and pagination, newest first.
func (r *saleRepository) List(ctx context.Context, params ports.SaleListParams) ([]domain.Sale, int64, error) {
	filters := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.StoreID != nil {
			qb = qb.Where(squirrel.Eq{"store_id": *params.StoreID})
		}
		if params.DateFrom != nil {
			qb = qb.Where(squirrel.GtOrEq{"sale_date": *params.DateFrom})
		}
		if params.DateTo != nil {
			qb = qb.Where(squirrel.LtOrEq{"sale_date": *params.DateTo})
		}
		return qb
	}

	countSQL, countArgs, err := filters(squirrel.Select("COUNT(*)").
		From("sales").
		PlaceholderFormat(squirrel.Dollar)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	qb := filters(squirrel.Select(
		"id", "store_id", "sale_date", "total_revenue", "total_cost",
		"profit", "notes", "created_at",
	).From("sales").
		PlaceholderFormat(squirrel.Dollar)).
		OrderBy("sale_date DESC, created_at DESC")

	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		if params.Page > 1 {
			qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
		}
	}

	listSQL, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(
			&s.ID, &s.StoreID, &s.SaleDate, &s.TotalRevenue, &s.TotalCost,
			&s.Profit, &s.Notes, &s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return sales, totalCount, nil
}
