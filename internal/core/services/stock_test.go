// internal/core/services/stock_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/services"
	"github.com/voltdepot/stock-be/test/helpers"
	"github.com/voltdepot/stock-be/test/mocks"
)

func newStockService(stock *mocks.FakeStockRepository, stores *mocks.FakeStoreRepository, notifier *mocks.FakeNotifier) *services.StockService {
	return services.NewStockService(stock, stores, notifier, helpers.TestLogger())
}

func TestStockService_ReceiveCentralStock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		lines         []domain.StockLine
		expectedError bool
		errorContains string
	}{
		{
			name:          "empty_lines_rejected",
			lines:         nil,
			expectedError: true,
			errorContains: "must not be empty",
		},
		{
			name: "missing_brand_rejected",
			lines: []domain.StockLine{
				helpers.CreateTestStockLine(func(l *domain.StockLine) { l.Brand = "" }),
			},
			expectedError: true,
			errorContains: "brand: is required",
		},
		{
			name: "zero_quantity_rejected",
			lines: []domain.StockLine{
				helpers.CreateTestStockLine(func(l *domain.StockLine) { l.Quantity = 0 }),
			},
			expectedError: true,
			errorContains: "quantity: must be positive",
		},
		{
			name: "negative_cost_rejected",
			lines: []domain.StockLine{
				helpers.CreateTestStockLine(func(l *domain.StockLine) {
					l.UnitCost = decimal.NewFromInt(-1)
				}),
			},
			expectedError: true,
			errorContains: "unit_cost: cannot be negative",
		},
		{
			name: "valid_lines_accepted",
			lines: []domain.StockLine{
				helpers.CreateTestStockLine(),
				helpers.CreateTestStockLine(func(l *domain.StockLine) {
					l.Brand = "Amaron"
					l.Rating = "100Ah"
					l.Quantity = 25
				}),
			},
			expectedError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := mocks.NewFakeStockRepository()
			notifier := &mocks.FakeNotifier{}
			service := newStockService(stock, mocks.NewFakeStoreRepository(), notifier)

			err := service.ReceiveCentralStock(ctx, tt.lines)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Equal(t, 0, stock.TotalUnits(), "failed receive must not touch the ledger")
				assert.Empty(t, notifier.Changes)
				return
			}

			require.NoError(t, err)
			want := 0
			for _, l := range tt.lines {
				want += l.Quantity
			}
			assert.Equal(t, want, stock.TotalUnits())
			assert.Len(t, notifier.ChangesFor("stock"), 1)
		})
	}
}

func TestStockService_ReceiveCentralStock_OverwritesPrices(t *testing.T) {
	ctx := context.Background()
	stock := mocks.NewFakeStockRepository()
	service := newStockService(stock, mocks.NewFakeStoreRepository(), &mocks.FakeNotifier{})

	stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
		l.Quantity = 5
		l.UnitCost = decimal.NewFromInt(2000)
		l.UnitPrice = decimal.NewFromInt(2600)
	}))

	newCost := decimal.NewFromInt(2500)
	newPrice := decimal.NewFromInt(3200)
	err := service.ReceiveCentralStock(ctx, []domain.StockLine{
		helpers.CreateTestStockLine(func(l *domain.StockLine) {
			l.Quantity = 10
			l.UnitCost = newCost
			l.UnitPrice = newPrice
		}),
	})
	require.NoError(t, err)

	line, err := stock.Find(ctx, domain.Central, "Exide", "35Ah")
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 15, line.Quantity)
	assert.True(t, line.UnitCost.Equal(newCost), "latest purchase cost wins")
	assert.True(t, line.UnitPrice.Equal(newPrice))
}

func TestStockService_ReturnAllToCentral(t *testing.T) {
	ctx := context.Background()
	store := helpers.CreateTestStore()

	seedStoreStock := func(stock *mocks.FakeStockRepository) {
		stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
			l.StoreID = store.ID
			l.Quantity = 8
		}))
		stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
			l.StoreID = store.ID
			l.Brand = "Amaron"
			l.Rating = "100Ah"
			l.Quantity = 4
		}))
		// Central already holds some of the first kind.
		stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
			l.Quantity = 3
		}))
	}

	t.Run("moves_every_line_and_conserves_units", func(t *testing.T) {
		stock := mocks.NewFakeStockRepository()
		seedStoreStock(stock)
		notifier := &mocks.FakeNotifier{}
		service := newStockService(stock, mocks.NewFakeStoreRepository(store), notifier)

		before := stock.TotalUnits()
		report, err := service.ReturnAllToCentral(ctx, store.ID)
		require.NoError(t, err)

		assert.Len(t, report.Moved, 2)
		assert.Empty(t, report.Failed)
		assert.Equal(t, before, stock.TotalUnits(), "return must only relocate units")

		central, err := stock.Find(ctx, domain.Central, "Exide", "35Ah")
		require.NoError(t, err)
		assert.Equal(t, 11, central.Quantity)

		storeLines, err := stock.ListByLocation(ctx, domain.StoreLocation(store.ID))
		require.NoError(t, err)
		assert.Empty(t, storeLines)

		// Both the store pool and central changed.
		assert.Len(t, notifier.ChangesFor("stock"), 2)
	})

	t.Run("partial_failure_reports_failed_keys", func(t *testing.T) {
		stock := mocks.NewFakeStockRepository()
		seedStoreStock(stock)
		stock.FailKeys[domain.StockKey{Brand: "Amaron", Rating: "100Ah"}] = errors.New("deadlock detected")
		service := newStockService(stock, mocks.NewFakeStoreRepository(store), &mocks.FakeNotifier{})

		before := stock.TotalUnits()
		report, err := service.ReturnAllToCentral(ctx, store.ID)
		require.NoError(t, err)

		assert.Equal(t, []domain.StockKey{{Brand: "Exide", Rating: "35Ah"}}, report.Moved)
		assert.Equal(t, []domain.StockKey{{Brand: "Amaron", Rating: "100Ah"}}, report.Failed)
		assert.Equal(t, before, stock.TotalUnits())

		// The failed line stayed put; a re-run would pick it up.
		line, err := stock.Find(ctx, domain.StoreLocation(store.ID), "Amaron", "100Ah")
		require.NoError(t, err)
		assert.Equal(t, 4, line.Quantity)
	})

	t.Run("unknown_store_rejected", func(t *testing.T) {
		service := newStockService(mocks.NewFakeStockRepository(), mocks.NewFakeStoreRepository(), &mocks.FakeNotifier{})

		_, err := service.ReturnAllToCentral(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("central_as_store_rejected", func(t *testing.T) {
		service := newStockService(mocks.NewFakeStockRepository(), mocks.NewFakeStoreRepository(store), &mocks.FakeNotifier{})

		_, err := service.ReturnAllToCentral(ctx, uuid.Nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestStockService_AnalyzeOpeningBalance(t *testing.T) {
	ctx := context.Background()
	store := helpers.CreateTestStore()

	stock := mocks.NewFakeStockRepository()
	stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
		l.StoreID = store.ID
		l.Quantity = 6
	}))
	service := newStockService(stock, mocks.NewFakeStoreRepository(store), &mocks.FakeNotifier{})

	lines := []domain.ImportLine{
		{Brand: "Exide", Rating: "35Ah", Quantity: 10, Price: decimal.NewFromInt(3100)},
		{Brand: "Luminous", Rating: "150Ah", Quantity: 3, Price: decimal.NewFromInt(13200)},
	}

	before := stock.TotalUnits()
	analysis, err := service.AnalyzeOpeningBalance(ctx, store.ID, lines)
	require.NoError(t, err)

	require.Len(t, analysis.Existing, 1)
	assert.Equal(t, "Exide", analysis.Existing[0].Line.Brand)
	assert.Equal(t, 6, analysis.Existing[0].CurrentQuantity)
	require.Len(t, analysis.New, 1)
	assert.Equal(t, "Luminous", analysis.New[0].Brand)

	assert.Equal(t, before, stock.TotalUnits(), "analyze must not mutate the ledger")
}

func TestStockService_AnalyzeOpeningBalance_Validation(t *testing.T) {
	ctx := context.Background()
	store := helpers.CreateTestStore()

	tests := []struct {
		name          string
		storeID       uuid.UUID
		lines         []domain.ImportLine
		errorContains string
	}{
		{
			name:          "central_rejected",
			storeID:       uuid.Nil,
			lines:         []domain.ImportLine{{Brand: "Exide", Rating: "35Ah", Quantity: 1}},
			errorContains: "store_id: is required",
		},
		{
			name:          "empty_lines_rejected",
			storeID:       store.ID,
			lines:         nil,
			errorContains: "lines: must not be empty",
		},
		{
			name:    "duplicate_key_rejected",
			storeID: store.ID,
			lines: []domain.ImportLine{
				{Brand: "Exide", Rating: "35Ah", Quantity: 1},
				{Brand: "Exide", Rating: "35Ah", Quantity: 2},
			},
			errorContains: "duplicate line for Exide 35Ah",
		},
		{
			name:          "zero_quantity_rejected",
			storeID:       store.ID,
			lines:         []domain.ImportLine{{Brand: "Exide", Rating: "35Ah", Quantity: 0}},
			errorContains: "quantity: must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newStockService(mocks.NewFakeStockRepository(), mocks.NewFakeStoreRepository(store), &mocks.FakeNotifier{})

			_, err := service.AnalyzeOpeningBalance(ctx, tt.storeID, tt.lines)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestStockService_CommitOpeningBalance(t *testing.T) {
	ctx := context.Background()
	store := helpers.CreateTestStore()
	price := decimal.NewFromInt(3400)

	t.Run("sum_adds_to_existing_quantity", func(t *testing.T) {
		stock := mocks.NewFakeStockRepository()
		stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
			l.StoreID = store.ID
			l.Quantity = 6
		}))
		notifier := &mocks.FakeNotifier{}
		service := newStockService(stock, mocks.NewFakeStoreRepository(store), notifier)

		err := service.CommitOpeningBalance(ctx, store.ID,
			[]domain.ImportLine{{Brand: "Exide", Rating: "35Ah", Quantity: 10, Price: price}},
			domain.ImportModeSum)
		require.NoError(t, err)

		line, err := stock.Find(ctx, domain.StoreLocation(store.ID), "Exide", "35Ah")
		require.NoError(t, err)
		assert.Equal(t, 16, line.Quantity)
		assert.True(t, line.UnitPrice.Equal(price), "import price always wins")
		assert.Len(t, notifier.ChangesFor("stock"), 1)
	})

	t.Run("replace_overrides_existing_quantity", func(t *testing.T) {
		stock := mocks.NewFakeStockRepository()
		stock.Seed(helpers.CreateTestStockLine(func(l *domain.StockLine) {
			l.StoreID = store.ID
			l.Quantity = 6
		}))
		service := newStockService(stock, mocks.NewFakeStoreRepository(store), &mocks.FakeNotifier{})

		err := service.CommitOpeningBalance(ctx, store.ID,
			[]domain.ImportLine{{Brand: "Exide", Rating: "35Ah", Quantity: 10, Price: price}},
			domain.ImportModeReplace)
		require.NoError(t, err)

		line, err := stock.Find(ctx, domain.StoreLocation(store.ID), "Exide", "35Ah")
		require.NoError(t, err)
		assert.Equal(t, 10, line.Quantity)
	})

	t.Run("unknown_mode_rejected", func(t *testing.T) {
		service := newStockService(mocks.NewFakeStockRepository(), mocks.NewFakeStoreRepository(store), &mocks.FakeNotifier{})

		err := service.CommitOpeningBalance(ctx, store.ID,
			[]domain.ImportLine{{Brand: "Exide", Rating: "35Ah", Quantity: 1, Price: price}},
			domain.ImportMode("merge"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mode: must be sum or replace")
	})
}
