// internal/adapters/db/sale_repository_test.go
package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdepot/stock-be/internal/adapters/db"
	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/test/helpers"
)

func TestSaleRepository_Register(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	ledgerCost := decimal.NewFromInt(2400)
	shelfPrice := decimal.NewFromInt(3100)

	t.Run("reserves_store_stock_and_keeps_caller_figures", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewSaleRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE stock_lines").
			WithArgs(storeID, "Exide", "35Ah", 3).
			WillReturnRows(pgxmock.NewRows([]string{"unit_cost", "unit_price"}).
				AddRow(ledgerCost, shelfPrice))
		mock.ExpectExec("INSERT INTO sales").
			WithArgs(pgxmock.AnyArg(), storeID, pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				"walk-in customer", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO sale_lines").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Exide", "35Ah", 3,
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		sale := &domain.Sale{
			StoreID: storeID,
			Notes:   "walk-in customer",
			Lines: []domain.SaleLine{
				{Brand: "Exide", Rating: "35Ah", Quantity: 3,
					UnitPrice: decimal.NewFromInt(3200), UnitCost: decimal.NewFromInt(2600)},
			},
		}
		require.NoError(t, repo.Register(ctx, sale))

		// The negotiated cost wins over the ledger snapshot returned by
		// the reservation, and profit is computed from it.
		assert.True(t, sale.Lines[0].UnitCost.Equal(decimal.NewFromInt(2600)))
		assert.True(t, sale.Lines[0].Subtotal.Equal(decimal.NewFromInt(9600)))
		assert.True(t, sale.TotalRevenue.Equal(decimal.NewFromInt(9600)))
		assert.True(t, sale.Profit.Equal(decimal.NewFromInt(1800)))
		assert.NoError(t, done())
	})

	t.Run("short_store_stock_rolls_back", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewSaleRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE stock_lines").
			WithArgs(storeID, "Exide", "35Ah", 50).
			WillReturnRows(pgxmock.NewRows([]string{"unit_cost", "unit_price"}))
		mock.ExpectQuery("SELECT quantity FROM stock_lines").
			WithArgs(storeID, "Exide", "35Ah").
			WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(7))
		mock.ExpectRollback()

		sale := &domain.Sale{
			StoreID: storeID,
			Lines: []domain.SaleLine{
				{Brand: "Exide", Rating: "35Ah", Quantity: 50, UnitPrice: decimal.NewFromInt(3200)},
			},
		}
		err := repo.Register(ctx, sale)
		require.Error(t, err)

		var insufficient *domain.InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 50, insufficient.Requested)
		assert.Equal(t, 7, insufficient.Available)
		assert.NoError(t, done())
	})
}

func TestSaleRepository_Delete(t *testing.T) {
	ctx := context.Background()
	saleID := uuid.New()
	storeID := uuid.New()
	cost := decimal.NewFromInt(2400)
	price := decimal.NewFromInt(3200)

	t.Run("restores_stock_then_removes_sale", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewSaleRepository(mock, helpers.TestLogger())

		lineID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id FROM sales").
			WithArgs(saleID).
			WillReturnRows(pgxmock.NewRows([]string{"store_id"}).AddRow(storeID))
		mock.ExpectQuery("SELECT id, sale_id, brand, rating").
			WithArgs(saleID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "sale_id", "brand", "rating", "quantity",
				"unit_price", "unit_cost", "subtotal", "profit",
			}).AddRow(lineID, saleID, "Exide", "35Ah", 3,
				price, cost, decimal.NewFromInt(9600), decimal.NewFromInt(2400)))
		// Keep-prices release; the sale snapshot only seeds pruned lines.
		mock.ExpectExec("INSERT INTO stock_lines").
			WithArgs(storeID, "Exide", "35Ah", 3, cost, price).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("DELETE FROM sale_lines").
			WithArgs(saleID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec("DELETE FROM sales").
			WithArgs(saleID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(ctx, saleID))
		assert.NoError(t, done())
	})

	t.Run("missing_sale_not_found", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewSaleRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id FROM sales").
			WithArgs(saleID).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Delete(ctx, saleID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, done())
	})
}
