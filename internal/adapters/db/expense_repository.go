// internal/adapters/db/expense_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// expenseRepository implements ports.ExpenseRepository
type expenseRepository struct {
	q      Querier
	logger *slog.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(q Querier, logger *slog.Logger) ports.ExpenseRepository {
	return &expenseRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "expense")),
	}
}

// Save inserts a new expense record.
func (r *expenseRepository) Save(ctx context.Context, expense *domain.Expense) error {
	expense.PrepareForStorage()

	_, err := r.q.Exec(ctx, `
		INSERT INTO expenses (id, store_id, category, description, amount, expense_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		expense.ID, expense.StoreID, expense.Category, expense.Description,
		expense.Amount, expense.ExpenseDate, expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	r.logger.DebugContext(ctx, "expense saved",
		slog.String("expense_id", expense.ID.String()),
		slog.String("store_id", expense.StoreID.String()),
		slog.String("category", expense.Category))

	return nil
}

// Delete removes an expense record.
func (r *expenseRepository) Delete(ctx context.Context, expenseID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
	}
	return nil
}

// FindByID retrieves a single expense.
func (r *expenseRepository) FindByID(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error) {
	expense := &domain.Expense{}
	err := r.q.QueryRow(ctx, `
		SELECT id, store_id, category, description, amount, expense_date, created_at
		FROM expenses
		WHERE id = $1`,
		expenseID).Scan(
		&expense.ID, &expense.StoreID, &expense.Category, &expense.Description,
		&expense.Amount, &expense.ExpenseDate, &expense.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}

	return expense, nil
}

// List retrieves expenses with filtering and pagination, newest first.
func (r *expenseRepository) List(ctx context.Context, params ports.ExpenseListParams) ([]domain.Expense, int64, error) {
	filters := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if params.StoreID != nil {
			qb = qb.Where(squirrel.Eq{"store_id": *params.StoreID})
		}
		if params.Category != "" {
			qb = qb.Where(squirrel.Eq{"category": params.Category})
		}
		if params.DateFrom != nil {
			qb = qb.Where(squirrel.GtOrEq{"expense_date": *params.DateFrom})
		}
		if params.DateTo != nil {
			qb = qb.Where(squirrel.LtOrEq{"expense_date": *params.DateTo})
		}
		return qb
	}

	countSQL, countArgs, err := filters(squirrel.Select("COUNT(*)").
		From("expenses").
		PlaceholderFormat(squirrel.Dollar)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	qb := filters(squirrel.Select(
		"id", "store_id", "category", "description", "amount",
		"expense_date", "created_at",
	).From("expenses").
		PlaceholderFormat(squirrel.Dollar)).
		OrderBy("expense_date DESC, created_at DESC")

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
		return nil, 0, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(
			&e.ID, &e.StoreID, &e.Category, &e.Description, &e.Amount,
			&e.ExpenseDate, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return expenses, totalCount, nil
}

// Categories returns distinct categories for autocomplete suggestions.
// A zero storeID returns categories used anywhere.
func (r *expenseRepository) Categories(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT category FROM expenses
		WHERE $1 = '00000000-0000-0000-0000-000000000000'::uuid OR store_id = $1
		ORDER BY category`,
		storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// TotalByStore sums the store's expenses over an optional date window.
func (r *expenseRepository) TotalByStore(ctx context.Context, storeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	qb := squirrel.Select("COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(squirrel.Eq{"store_id": storeID}).
		PlaceholderFormat(squirrel.Dollar)
	if from != nil {
		qb = qb.Where(squirrel.GtOrEq{"expense_date": *from})
	}
	if to != nil {
		qb = qb.Where(squirrel.LtOrEq{"expense_date": *to})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build query: %w", err)
	}

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return total, nil
}
