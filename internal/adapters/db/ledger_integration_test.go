//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/voltdepot/stock-be/internal/adapters/db"
	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
	"github.com/voltdepot/stock-be/test/helpers"
)

// LedgerRepositorySuite drives the stock, shipment and sale repositories
// against a real database. The theme throughout is unit conservation: every
// transfer relocates units, only purchases add and only sales remove.
type LedgerRepositorySuite struct {
	suite.Suite
	testDB    *helpers.TestDB
	stock     ports.StockRepository
	shipments ports.ShipmentRepository
	sales     ports.SaleRepository
	stores    ports.StoreRepository
	ctx       context.Context
	storeID   uuid.UUID
}

func TestLedgerRepositorySuite(t *testing.T) {
	suite.Run(t, new(LedgerRepositorySuite))
}

func (s *LedgerRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.stock = db.NewStockRepository(s.testDB.Database, logger)
	s.shipments = db.NewShipmentRepository(s.testDB.Database, logger)
	s.sales = db.NewSaleRepository(s.testDB.Database, logger)
	s.stores = db.NewStoreRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *LedgerRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)

	store := helpers.CreateTestStore()
	s.Require().NoError(s.stores.Save(s.ctx, &store))
	s.storeID = store.ID
}

func (s *LedgerRepositorySuite) seedCentral(brand, rating string, qty int) {
	err := s.stock.Release(s.ctx, domain.Central, brand, rating, qty,
		decimal.NewFromInt(2400), decimal.NewFromInt(3100), true)
	s.Require().NoError(err)
}

func (s *LedgerRepositorySuite) quantity(loc domain.Location, brand, rating string) int {
	line, err := s.stock.Find(s.ctx, loc, brand, rating)
	s.Require().NoError(err)
	if line == nil {
		return 0
	}
	return line.Quantity
}

func (s *LedgerRepositorySuite) totalUnits() int {
	var total int
	err := s.testDB.PgxPool.QueryRow(s.ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_lines`).Scan(&total)
	s.Require().NoError(err)

	var staged int
	err = s.testDB.PgxPool.QueryRow(s.ctx, `
		SELECT COALESCE(SUM(sl.quantity), 0)
		FROM shipment_lines sl
		JOIN shipments sh ON sh.id = sl.shipment_id
		WHERE sh.status NOT IN ('completed', 'cancelled')`).Scan(&staged)
	s.Require().NoError(err)

	return total + staged
}

func (s *LedgerRepositorySuite) TestReserveRelease_RoundTrip() {
	s.seedCentral("Exide", "35Ah", 20)

	snap, err := s.stock.Reserve(s.ctx, domain.Central, "Exide", "35Ah", 6)
	s.Require().NoError(err)
	s.True(snap.UnitCost.Equal(decimal.NewFromInt(2400)))
	s.Equal(14, s.quantity(domain.Central, "Exide", "35Ah"))

	err = s.stock.Release(s.ctx, domain.Central, "Exide", "35Ah", 6,
		snap.UnitCost, snap.UnitPrice, false)
	s.Require().NoError(err)
	s.Equal(20, s.quantity(domain.Central, "Exide", "35Ah"))
}

func (s *LedgerRepositorySuite) TestReserve_ShortLineUntouched() {
	s.seedCentral("Exide", "35Ah", 5)

	_, err := s.stock.Reserve(s.ctx, domain.Central, "Exide", "35Ah", 6)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrInsufficientStock)

	// The failed reserve must leave the line exactly as it was.
	s.Equal(5, s.quantity(domain.Central, "Exide", "35Ah"))
}

func (s *LedgerRepositorySuite) TestShipmentLifecycle_Confirm() {
	s.seedCentral("Exide", "35Ah", 30)
	s.seedCentral("Amaron", "100Ah", 10)

	shipment := &domain.Shipment{
		StoreID: s.storeID,
		Lines: []domain.ShipmentLine{
			{Brand: "Exide", Rating: "35Ah", Quantity: 12},
			{Brand: "Amaron", Rating: "100Ah", Quantity: 4},
		},
	}
	s.Require().NoError(s.shipments.CreateStaged(s.ctx, shipment))
	s.Equal(domain.ShipmentPending, shipment.Status)
	s.Equal(16, shipment.TotalUnits)
	s.Equal(18, s.quantity(domain.Central, "Exide", "35Ah"))
	s.Equal(46, s.totalUnits())

	// Confirm before pricing rejects.
	_, err := s.shipments.Confirm(s.ctx, shipment.ID)
	s.ErrorIs(err, domain.ErrIncompletePricing)

	// Price one line: still pending.
	priced, err := s.shipments.AssignPrices(s.ctx, shipment.ID, map[uuid.UUID]decimal.Decimal{
		shipment.Lines[0].ID: decimal.NewFromInt(3300),
	})
	s.Require().NoError(err)
	s.Equal(domain.ShipmentPending, priced.Status)

	// Price the rest: prices assigned.
	priced, err = s.shipments.AssignPrices(s.ctx, shipment.ID, map[uuid.UUID]decimal.Decimal{
		shipment.Lines[1].ID: decimal.NewFromInt(9100),
	})
	s.Require().NoError(err)
	s.Equal(domain.ShipmentPricesAssigned, priced.Status)

	confirmed, err := s.shipments.Confirm(s.ctx, shipment.ID)
	s.Require().NoError(err)
	s.Equal(domain.ShipmentCompleted, confirmed.Status)
	s.NotNil(confirmed.CompletedAt)

	// Units arrived in the store at the assigned price.
	storeLoc := domain.StoreLocation(s.storeID)
	s.Equal(12, s.quantity(storeLoc, "Exide", "35Ah"))
	line, err := s.stock.Find(s.ctx, storeLoc, "Exide", "35Ah")
	s.Require().NoError(err)
	s.True(line.UnitPrice.Equal(decimal.NewFromInt(3300)))
	s.Equal(46, s.totalUnits())

	// Terminal shipments reject every further transition.
	_, err = s.shipments.Confirm(s.ctx, shipment.ID)
	s.ErrorIs(err, domain.ErrAlreadyTerminal)
	_, err = s.shipments.Cancel(s.ctx, shipment.ID)
	s.ErrorIs(err, domain.ErrAlreadyTerminal)
}

func (s *LedgerRepositorySuite) TestShipmentLifecycle_Cancel() {
	s.seedCentral("Exide", "35Ah", 30)

	shipment := &domain.Shipment{
		StoreID: s.storeID,
		Lines:   []domain.ShipmentLine{{Brand: "Exide", Rating: "35Ah", Quantity: 12}},
	}
	s.Require().NoError(s.shipments.CreateStaged(s.ctx, shipment))
	s.Equal(18, s.quantity(domain.Central, "Exide", "35Ah"))

	cancelled, err := s.shipments.Cancel(s.ctx, shipment.ID)
	s.Require().NoError(err)
	s.Equal(domain.ShipmentCancelled, cancelled.Status)
	s.Nil(cancelled.CompletedAt)

	// Units are back in central, none ever reached the store.
	s.Equal(30, s.quantity(domain.Central, "Exide", "35Ah"))
	s.Equal(0, s.quantity(domain.StoreLocation(s.storeID), "Exide", "35Ah"))
	s.Equal(30, s.totalUnits())
}

func (s *LedgerRepositorySuite) TestCreateStaged_ShortLineRollsBackWholeShipment() {
	s.seedCentral("Exide", "35Ah", 30)
	s.seedCentral("Amaron", "100Ah", 2)

	shipment := &domain.Shipment{
		StoreID: s.storeID,
		Lines: []domain.ShipmentLine{
			{Brand: "Exide", Rating: "35Ah", Quantity: 12},
			{Brand: "Amaron", Rating: "100Ah", Quantity: 4},
		},
	}
	err := s.shipments.CreateStaged(s.ctx, shipment)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrInsufficientStock)

	// No partial reservation survived.
	s.Equal(30, s.quantity(domain.Central, "Exide", "35Ah"))
	s.Equal(2, s.quantity(domain.Central, "Amaron", "100Ah"))

	var count int
	s.Require().NoError(s.testDB.PgxPool.QueryRow(s.ctx,
		`SELECT COUNT(*) FROM shipments`).Scan(&count))
	s.Equal(0, count)
}

func (s *LedgerRepositorySuite) TestSale_RegisterAndDelete() {
	// Put 10 units in the store at a known cost.
	err := s.stock.Release(s.ctx, domain.StoreLocation(s.storeID), "Exide", "35Ah", 10,
		decimal.NewFromInt(2400), decimal.NewFromInt(3300), true)
	s.Require().NoError(err)

	sale := &domain.Sale{
		StoreID: s.storeID,
		Lines: []domain.SaleLine{
			{Brand: "Exide", Rating: "35Ah", Quantity: 3,
				UnitPrice: decimal.NewFromInt(3200), UnitCost: decimal.NewFromInt(2600)},
		},
	}
	s.Require().NoError(s.sales.Register(s.ctx, sale))

	// Cost and revenue both come from the negotiated figures, not the
	// ledger snapshot the reservation saw.
	s.True(sale.Lines[0].UnitCost.Equal(decimal.NewFromInt(2600)))
	s.True(sale.TotalRevenue.Equal(decimal.NewFromInt(9600)))
	s.True(sale.Profit.Equal(decimal.NewFromInt(1800)))
	s.Equal(7, s.quantity(domain.StoreLocation(s.storeID), "Exide", "35Ah"))

	found, err := s.sales.FindByID(s.ctx, sale.ID)
	s.Require().NoError(err)
	s.Len(found.Lines, 1)

	// Reversal restores the store pool and removes the sale.
	s.Require().NoError(s.sales.Delete(s.ctx, sale.ID))
	s.Equal(10, s.quantity(domain.StoreLocation(s.storeID), "Exide", "35Ah"))

	_, err = s.sales.FindByID(s.ctx, sale.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *LedgerRepositorySuite) TestSale_ShortStoreStockRollsBack() {
	err := s.stock.Release(s.ctx, domain.StoreLocation(s.storeID), "Exide", "35Ah", 2,
		decimal.NewFromInt(2400), decimal.NewFromInt(3300), true)
	s.Require().NoError(err)

	sale := &domain.Sale{
		StoreID: s.storeID,
		Lines: []domain.SaleLine{
			{Brand: "Exide", Rating: "35Ah", Quantity: 2, UnitPrice: decimal.NewFromInt(3300)},
			{Brand: "Amaron", Rating: "100Ah", Quantity: 1, UnitPrice: decimal.NewFromInt(9100)},
		},
	}
	err = s.sales.Register(s.ctx, sale)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrInsufficientStock)

	// The first line's reservation rolled back with the failed sale.
	s.Equal(2, s.quantity(domain.StoreLocation(s.storeID), "Exide", "35Ah"))

	var count int
	s.Require().NoError(s.testDB.PgxPool.QueryRow(s.ctx,
		`SELECT COUNT(*) FROM sales`).Scan(&count))
	s.Equal(0, count)
}

func (s *LedgerRepositorySuite) TestMoveToCentral_MergesWithExistingLine() {
	s.seedCentral("Exide", "35Ah", 5)
	err := s.stock.Release(s.ctx, domain.StoreLocation(s.storeID), "Exide", "35Ah", 8,
		decimal.NewFromInt(2500), decimal.NewFromInt(3300), true)
	s.Require().NoError(err)

	line, err := s.stock.Find(s.ctx, domain.StoreLocation(s.storeID), "Exide", "35Ah")
	s.Require().NoError(err)
	s.Require().NoError(s.stock.MoveToCentral(s.ctx, *line))

	s.Equal(13, s.quantity(domain.Central, "Exide", "35Ah"))
	s.Equal(0, s.quantity(domain.StoreLocation(s.storeID), "Exide", "35Ah"))

	// Central kept its own snapshots; the store's prices did not leak in.
	central, err := s.stock.Find(s.ctx, domain.Central, "Exide", "35Ah")
	s.Require().NoError(err)
	s.True(central.UnitCost.Equal(decimal.NewFromInt(2400)))
	s.True(central.UnitPrice.Equal(decimal.NewFromInt(3100)))
}
