// internal/adapters/db/shipment_repository_test.go
package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

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

func TestShipmentRepository_CreateStaged(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	cost := decimal.NewFromInt(2400)
	price := decimal.NewFromInt(3100)

	t.Run("reserves_central_and_inserts", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE stock_lines").
			WithArgs(uuid.Nil, "Exide", "35Ah", 5).
			WillReturnRows(pgxmock.NewRows([]string{"unit_cost", "unit_price"}).
				AddRow(cost, price))
		mock.ExpectExec("INSERT INTO shipments").
			WithArgs(pgxmock.AnyArg(), storeID, domain.ShipmentPending, 1, 5, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO shipment_lines").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Exide", "35Ah", 5, cost, price).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		shipment := &domain.Shipment{
			StoreID: storeID,
			Lines: []domain.ShipmentLine{
				{Brand: "Exide", Rating: "35Ah", Quantity: 5},
			},
		}
		require.NoError(t, repo.CreateStaged(ctx, shipment))

		assert.Equal(t, domain.ShipmentPending, shipment.Status)
		assert.Equal(t, 5, shipment.TotalUnits)
		assert.True(t, shipment.Lines[0].OriginalCost.Equal(cost))
		assert.True(t, shipment.Lines[0].OriginalPrice.Equal(price))
		assert.Nil(t, shipment.Lines[0].StorePrice)
		assert.NoError(t, done())
	})

	t.Run("short_central_line_rolls_back", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE stock_lines").
			WithArgs(uuid.Nil, "Amaron", "100Ah", 4).
			WillReturnRows(pgxmock.NewRows([]string{"unit_cost", "unit_price"}))
		mock.ExpectQuery("SELECT quantity FROM stock_lines").
			WithArgs(uuid.Nil, "Amaron", "100Ah").
			WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(2))
		mock.ExpectRollback()

		shipment := &domain.Shipment{
			StoreID: storeID,
			Lines: []domain.ShipmentLine{
				{Brand: "Amaron", Rating: "100Ah", Quantity: 4},
			},
		}
		err := repo.CreateStaged(ctx, shipment)
		require.Error(t, err)

		var insufficient *domain.InsufficientStockError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 4, insufficient.Requested)
		assert.Equal(t, 2, insufficient.Available)
		assert.NoError(t, done())
	})
}

func TestShipmentRepository_Confirm(t *testing.T) {
	ctx := context.Background()
	shipmentID := uuid.New()
	storeID := uuid.New()
	cost := decimal.NewFromInt(2400)
	price := decimal.NewFromInt(3100)

	t.Run("unpriced_line_rejects_inside_transaction", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id, status FROM shipments").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{"store_id", "status"}).
				AddRow(storeID, domain.ShipmentPending))
		mock.ExpectQuery("SELECT id, shipment_id, brand, rating").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "shipment_id", "brand", "rating", "quantity",
				"original_cost", "original_price", "store_price",
			}).AddRow(uuid.New(), shipmentID, "Exide", "35Ah", 5, cost, price, nil))
		mock.ExpectRollback()

		_, err := repo.Confirm(ctx, shipmentID)
		assert.ErrorIs(t, err, domain.ErrIncompletePricing)
		assert.NoError(t, done())
	})

	t.Run("terminal_shipment_rejects", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id, status FROM shipments").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{"store_id", "status"}).
				AddRow(storeID, domain.ShipmentCompleted))
		mock.ExpectRollback()

		_, err := repo.Confirm(ctx, shipmentID)
		assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
		assert.NoError(t, done())
	})

	t.Run("missing_shipment_not_found", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id, status FROM shipments").
			WithArgs(shipmentID).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Confirm(ctx, shipmentID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, done())
	})
}

func TestShipmentRepository_Cancel(t *testing.T) {
	ctx := context.Background()
	shipmentID := uuid.New()
	storeID := uuid.New()
	cost := decimal.NewFromInt(2400)
	price := decimal.NewFromInt(3100)
	storePrice := decimal.NewFromInt(3300)

	t.Run("releases_lines_back_to_central", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		lineID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id, status FROM shipments").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{"store_id", "status"}).
				AddRow(storeID, domain.ShipmentPricesAssigned))
		mock.ExpectQuery("SELECT id, shipment_id, brand, rating").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "shipment_id", "brand", "rating", "quantity",
				"original_cost", "original_price", "store_price",
			}).AddRow(lineID, shipmentID, "Exide", "35Ah", 5, cost, price, storePrice.String()))
		// Original snapshots go back to central; the assigned store price
		// is discarded.
		mock.ExpectExec("INSERT INTO stock_lines").
			WithArgs(uuid.Nil, "Exide", "35Ah", 5, cost, price).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("UPDATE shipments SET status").
			WithArgs(domain.ShipmentCancelled, shipmentID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		mock.ExpectQuery("SELECT id, store_id, status").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "store_id", "status", "total_line_items", "total_units",
				"created_at", "completed_at",
			}).AddRow(shipmentID, storeID, domain.ShipmentCancelled, 1, 5, time.Now(), nil))
		mock.ExpectQuery("SELECT id, shipment_id, brand, rating").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "shipment_id", "brand", "rating", "quantity",
				"original_cost", "original_price", "store_price",
			}).AddRow(lineID, shipmentID, "Exide", "35Ah", 5, cost, price, storePrice.String()))

		shipment, err := repo.Cancel(ctx, shipmentID)
		require.NoError(t, err)
		assert.Equal(t, domain.ShipmentCancelled, shipment.Status)
		assert.Nil(t, shipment.CompletedAt)
		assert.NoError(t, done())
	})

	t.Run("cancelled_shipment_rejects_again", func(t *testing.T) {
		mock, done := newMockRepo(t)
		repo := db.NewShipmentRepository(mock, helpers.TestLogger())

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT store_id, status FROM shipments").
			WithArgs(shipmentID).
			WillReturnRows(pgxmock.NewRows([]string{"store_id", "status"}).
				AddRow(storeID, domain.ShipmentCancelled))
		mock.ExpectRollback()

		_, err := repo.Cancel(ctx, shipmentID)
		assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

		var transition *domain.StateTransitionError
		require.True(t, errors.As(err, &transition))
		assert.Equal(t, domain.ShipmentCancelled, transition.From)
		assert.NoError(t, done())
	})
}
