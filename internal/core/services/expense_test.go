// internal/core/services/expense_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/services"
	"github.com/voltdepot/stock-be/test/helpers"
	"github.com/voltdepot/stock-be/test/mocks"
)

func TestExpenseService_Record(t *testing.T) {
	ctx := context.Background()
	store := helpers.CreateTestStore()

	tests := []struct {
		name          string
		expense       domain.Expense
		expectedError bool
		errorContains string
	}{
		{
			name: "missing_store_rejected",
			expense: domain.Expense{
				Category: "rent",
				Amount:   decimal.NewFromInt(15000),
			},
			expectedError: true,
			errorContains: "store_id: is required",
		},
		{
			name: "missing_category_rejected",
			expense: domain.Expense{
				StoreID: store.ID,
				Amount:  decimal.NewFromInt(15000),
			},
			expectedError: true,
			errorContains: "category: is required",
		},
		{
			name: "zero_amount_rejected",
			expense: domain.Expense{
				StoreID:  store.ID,
				Category: "rent",
			},
			expectedError: true,
			errorContains: "amount: must be positive",
		},
		{
			name: "unknown_store_rejected",
			expense: domain.Expense{
				StoreID:  uuid.New(),
				Category: "rent",
				Amount:   decimal.NewFromInt(15000),
			},
			expectedError: true,
			errorContains: "not found",
		},
		{
			name: "valid_expense_saved",
			expense: domain.Expense{
				ID:          uuid.New(),
				StoreID:     store.ID,
				Category:    "electricity",
				Description: "monthly bill",
				Amount:      decimal.NewFromInt(4200),
				ExpenseDate: time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expenses := mocks.NewFakeExpenseRepository()
			notifier := &mocks.FakeNotifier{}
			service := services.NewExpenseService(expenses, mocks.NewFakeStoreRepository(store), notifier, helpers.TestLogger())

			exp := tt.expense
			err := service.Record(ctx, &exp)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Empty(t, notifier.Changes)
				return
			}

			require.NoError(t, err)
			saved, err := expenses.FindByID(ctx, exp.ID)
			require.NoError(t, err)
			assert.Equal(t, "electricity", saved.Category)
			assert.Len(t, notifier.ChangesFor("expense"), 1)
		})
	}
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	store := helpers.CreateTestStore()

	expenses := mocks.NewFakeExpenseRepository()
	notifier := &mocks.FakeNotifier{}
	service := services.NewExpenseService(expenses, mocks.NewFakeStoreRepository(store), notifier, helpers.TestLogger())

	expense := &domain.Expense{
		ID:       uuid.New(),
		StoreID:  store.ID,
		Category: "rent",
		Amount:   decimal.NewFromInt(15000),
	}
	require.NoError(t, expenses.Save(ctx, expense))

	require.NoError(t, service.Delete(ctx, expense.ID))

	_, err := expenses.FindByID(ctx, expense.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, notifier.ChangesFor("expense"), 1)

	// Deleting again fails cleanly.
	err = service.Delete(ctx, expense.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpenseService_CategorySuggestions(t *testing.T) {
	ctx := context.Background()
	storeA := helpers.CreateTestStore()
	storeB := helpers.CreateTestStore()

	expenses := mocks.NewFakeExpenseRepository()
	service := services.NewExpenseService(expenses, mocks.NewFakeStoreRepository(storeA, storeB), &mocks.FakeNotifier{}, helpers.TestLogger())

	for _, e := range []domain.Expense{
		{ID: uuid.New(), StoreID: storeA.ID, Category: "rent", Amount: decimal.NewFromInt(1)},
		{ID: uuid.New(), StoreID: storeA.ID, Category: "tea", Amount: decimal.NewFromInt(1)},
		{ID: uuid.New(), StoreID: storeB.ID, Category: "transport", Amount: decimal.NewFromInt(1)},
	} {
		exp := e
		require.NoError(t, expenses.Save(ctx, &exp))
	}

	perStore, err := service.CategorySuggestions(ctx, storeA.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rent", "tea"}, perStore)

	all, err := service.CategorySuggestions(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rent", "tea", "transport"}, all)
}
