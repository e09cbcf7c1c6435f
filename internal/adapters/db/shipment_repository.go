// internal/adapters/db/shipment_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// shipmentRepository implements ports.ShipmentRepository
type shipmentRepository struct {
	q      Querier
	logger *slog.Logger
}

// NewShipmentRepository creates a new shipment repository
func NewShipmentRepository(q Querier, logger *slog.Logger) ports.ShipmentRepository {
	return &shipmentRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "shipment")),
	}
}

// lockShipmentStatus reads and row-locks a shipment's status so a concurrent
// transition on the same shipment serializes behind this transaction.
func lockShipmentStatus(ctx context.Context, tx pgx.Tx, shipmentID uuid.UUID) (uuid.UUID, domain.ShipmentStatus, error) {
	var storeID uuid.UUID
	var status domain.ShipmentStatus
	err := tx.QueryRow(ctx,
		`SELECT store_id, status FROM shipments WHERE id = $1 FOR UPDATE`,
		shipmentID).Scan(&storeID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, "", fmt.Errorf("shipment %s: %w", shipmentID, domain.ErrNotFound)
		}
		return uuid.Nil, "", fmt.Errorf("failed to lock shipment: %w", err)
	}
	return storeID, status, nil
}

// CreateStaged reserves every requested line from central and inserts the
// shipment in Pending inside one transaction. Any short line rolls the whole
// staging back, so no partial reservation can survive a failure.
func (r *shipmentRepository) CreateStaged(ctx context.Context, shipment *domain.Shipment) error {
	if shipment.ID == uuid.Nil {
		shipment.ID = uuid.New()
	}
	shipment.Status = domain.ShipmentPending
	shipment.CreatedAt = time.Now()
	shipment.CompletedAt = nil

	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		for i := range shipment.Lines {
			line := &shipment.Lines[i]
			snap, err := reserveLine(ctx, tx, domain.Central, line.Brand, line.Rating, line.Quantity)
			if err != nil {
				return err
			}
			line.ID = uuid.New()
			line.ShipmentID = shipment.ID
			line.OriginalCost = snap.UnitCost
			line.OriginalPrice = snap.UnitPrice
			line.StorePrice = nil
		}
		shipment.RecomputeTotals()

		_, err := tx.Exec(ctx, `
			INSERT INTO shipments (id, store_id, status, total_line_items, total_units, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			shipment.ID, shipment.StoreID, shipment.Status,
			shipment.TotalLineItems, shipment.TotalUnits, shipment.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert shipment: %w", err)
		}

		for i := range shipment.Lines {
			line := &shipment.Lines[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO shipment_lines (id, shipment_id, brand, rating, quantity, original_cost, original_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				line.ID, line.ShipmentID, line.Brand, line.Rating,
				line.Quantity, line.OriginalCost, line.OriginalPrice)
			if err != nil {
				return fmt.Errorf("failed to insert shipment line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "shipment staged",
		slog.String("shipment_id", shipment.ID.String()),
		slog.String("store_id", shipment.StoreID.String()),
		slog.Int("total_units", shipment.TotalUnits))

	return nil
}

// AssignPrices writes store prices onto the given lines and re-derives the
// shipment status from pricing completeness. Terminal shipments reject.
func (r *shipmentRepository) AssignPrices(ctx context.Context, shipmentID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) (*domain.Shipment, error) {
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		_, status, err := lockShipmentStatus(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		if _, err := status.NextStatus(domain.ShipmentOpPrice); err != nil {
			return err
		}

		for lineID, price := range prices {
			if price.IsNegative() {
				return &domain.ValidationError{Field: "store_price", Reason: "must not be negative"}
			}
			tag, err := tx.Exec(ctx,
				`UPDATE shipment_lines SET store_price = $1 WHERE id = $2 AND shipment_id = $3`,
				price, lineID, shipmentID)
			if err != nil {
				return fmt.Errorf("failed to assign price: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("shipment line %s: %w", lineID, domain.ErrNotFound)
			}
		}

		// Status is a pure function of the lines' pricing state.
		var unpriced int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM shipment_lines WHERE shipment_id = $1 AND store_price IS NULL`,
			shipmentID).Scan(&unpriced)
		if err != nil {
			return fmt.Errorf("failed to count unpriced lines: %w", err)
		}

		next := domain.ShipmentPending
		if unpriced == 0 {
			next = domain.ShipmentPricesAssigned
		}
		if _, err := tx.Exec(ctx,
			`UPDATE shipments SET status = $1 WHERE id = $2`, next, shipmentID); err != nil {
			return fmt.Errorf("failed to update shipment status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, shipmentID)
}

// Confirm moves the shipment to Completed and releases every line into the
// store pool at its assigned price. The pricing check runs inside the same
// transaction as the status change, so a price stripped between a read and
// the confirm still rejects.
func (r *shipmentRepository) Confirm(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		storeID, status, err := lockShipmentStatus(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		if _, err := status.NextStatus(domain.ShipmentOpConfirm); err != nil {
			return err
		}

		lines, err := scanShipmentLines(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		for i := range lines {
			if !lines[i].Priced() {
				return fmt.Errorf("shipment %s has unpriced lines: %w",
					shipmentID, domain.ErrIncompletePricing)
			}
		}

		store := domain.StoreLocation(storeID)
		for i := range lines {
			line := &lines[i]
			if err := releaseLine(ctx, tx, store, line.Brand, line.Rating, line.Quantity,
				line.OriginalCost, *line.StorePrice, true); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE shipments SET status = $1, completed_at = now() WHERE id = $2`,
			domain.ShipmentCompleted, shipmentID)
		if err != nil {
			return fmt.Errorf("failed to update shipment status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "shipment confirmed",
		slog.String("shipment_id", shipmentID.String()))

	return r.FindByID(ctx, shipmentID)
}

// Cancel moves the shipment to Cancelled and releases every line back into
// central at its original snapshots. Assigned store prices are discarded.
func (r *shipmentRepository) Cancel(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		_, status, err := lockShipmentStatus(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		if _, err := status.NextStatus(domain.ShipmentOpCancel); err != nil {
			return err
		}

		lines, err := scanShipmentLines(ctx, tx, shipmentID)
		if err != nil {
			return err
		}
		for i := range lines {
			line := &lines[i]
			if err := releaseLine(ctx, tx, domain.Central, line.Brand, line.Rating, line.Quantity,
				line.OriginalCost, line.OriginalPrice, false); err != nil {
				return err
			}
		}

		// completed_at stays NULL; only a confirmed shipment completes.
		_, err = tx.Exec(ctx,
			`UPDATE shipments SET status = $1 WHERE id = $2`,
			domain.ShipmentCancelled, shipmentID)
		if err != nil {
			return fmt.Errorf("failed to update shipment status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "shipment cancelled",
		slog.String("shipment_id", shipmentID.String()))

	return r.FindByID(ctx, shipmentID)
}

// FindByID retrieves a shipment with its lines.
func (r *shipmentRepository) FindByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	query := `
		SELECT id, store_id, status, total_line_items, total_units, created_at, completed_at
		FROM shipments
		WHERE id = $1`

	shipment := &domain.Shipment{}
	err := r.q.QueryRow(ctx, query, shipmentID).Scan(
		&shipment.ID, &shipment.StoreID, &shipment.Status,
		&shipment.TotalLineItems, &shipment.TotalUnits,
		&shipment.CreatedAt, &shipment.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("shipment %s: %w", shipmentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}

	shipment.Lines, err = scanShipmentLines(ctx, r.q, shipmentID)
	if err != nil {
		return nil, err
	}

	return shipment, nil
}

// queryer is the result-set surface shared by pools and transactions.
type queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func scanShipmentLines(ctx context.Context, q queryer, shipmentID uuid.UUID) ([]domain.ShipmentLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, shipment_id, brand, rating, quantity, original_cost, original_price, store_price
		FROM shipment_lines
		WHERE shipment_id = $1
		ORDER BY brand, rating`,
		shipmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipment lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.ShipmentLine
	for rows.Next() {
		var line domain.ShipmentLine
		var storePrice pgtype.Numeric
		if err := rows.Scan(
			&line.ID, &line.ShipmentID, &line.Brand, &line.Rating,
			&line.Quantity, &line.OriginalCost, &line.OriginalPrice, &storePrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shipment line: %w", err)
		}
		line.StorePrice = numericToDecimal(storePrice)
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lines, nil
}

func numericToDecimal(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return nil
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d
}

// List retrieves shipments with filtering and pagination. Lines are not
// loaded; the denormalized totals carry the listing.
func (r *shipmentRepository) List(ctx context.Context, params ports.ShipmentListParams) ([]domain.Shipment, int64, error) {
	filters := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.StoreID != nil {
			qb = qb.Where(squirrel.Eq{"store_id": *params.StoreID})
		}
		if params.Status != "" {
			qb = qb.Where(squirrel.Eq{"status": params.Status})
		}
		if params.DateFrom != nil {
			qb = qb.Where(squirrel.GtOrEq{"created_at": *params.DateFrom})
		}
		if params.DateTo != nil {
			qb = qb.Where(squirrel.LtOrEq{"created_at": *params.DateTo})
		}
		return qb
	}

	countSQL, countArgs, err := filters(squirrel.Select("COUNT(*)").
		From("shipments").
		PlaceholderFormat(squirrel.Dollar)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count shipments: %w", err)
	}

	qb := filters(squirrel.Select(
		"id", "store_id", "status", "total_line_items", "total_units",
		"created_at", "completed_at",
	).From("shipments").
		PlaceholderFormat(squirrel.Dollar))

	qb = qb.OrderBy("created_at DESC")
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
		return nil, 0, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer rows.Close()

	var shipments []domain.Shipment
	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(
			&s.ID, &s.StoreID, &s.Status, &s.TotalLineItems, &s.TotalUnits,
			&s.CreatedAt, &s.CompletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan shipment: %w", err)
		}
		shipments = append(shipments, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return shipments, totalCount, nil
}
