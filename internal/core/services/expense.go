// internal/core/services/expense.go
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// ExpenseService owns the append/delete-only expense ledger. Expenses never
// touch stock.
type ExpenseService struct {
	expenses ports.ExpenseRepository
	stores   ports.StoreRepository
	notifier ports.ChangeNotifier
	logger   *slog.Logger
}

// Statically assert that *ExpenseService implements the ExpenseService interface.
var _ ports.ExpenseService = (*ExpenseService)(nil)

// NewExpenseService creates a new expense service
func NewExpenseService(expenses ports.ExpenseRepository, stores ports.StoreRepository, notifier ports.ChangeNotifier, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		stores:   stores,
		notifier: notifier,
		logger:   logger.With(slog.String("service", "expense")),
	}
}

// Record appends an expense to the store's ledger.
func (s *ExpenseService) Record(ctx context.Context, expense *domain.Expense) error {
	if err := expense.Validate(); err != nil {
		return err
	}
	if _, err := s.stores.FindByID(ctx, expense.StoreID); err != nil {
		return err
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return err
	}

	s.notifier.Notify(ctx, ports.Change{Entity: "expense", StoreID: expense.StoreID, ID: expense.ID})

	return nil
}

// Delete removes an expense from the ledger.
func (s *ExpenseService) Delete(ctx context.Context, expenseID uuid.UUID) error {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return err
	}

	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "expense deleted",
		slog.String("expense_id", expenseID.String()),
		slog.String("store_id", expense.StoreID.String()))

	s.notifier.Notify(ctx, ports.Change{Entity: "expense", StoreID: expense.StoreID, ID: expenseID})

	return nil
}

// GetByID retrieves a single expense.
func (s *ExpenseService) GetByID(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error) {
	return s.expenses.FindByID(ctx, expenseID)
}

// List retrieves a page of expenses.
func (s *ExpenseService) List(ctx context.Context, params ports.ExpenseListParams) (*ports.ExpenseListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	expenses, total, err := s.expenses.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ports.ExpenseListResult{
		Expenses:   expenses,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
	}, nil
}

// CategorySuggestions returns categories already in use, optionally
// narrowed to one store.
func (s *ExpenseService) CategorySuggestions(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	return s.expenses.Categories(ctx, storeID)
}

// TotalByStore sums the store's expenses over an optional date window.
func (s *ExpenseService) TotalByStore(ctx context.Context, storeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	return s.expenses.TotalByStore(ctx, storeID, from, to)
}
