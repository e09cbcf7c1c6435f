// internal/core/domain/sale_test.go
package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdepot/stock-be/internal/core/domain"
)

func TestSaleLine_Compute(t *testing.T) {
	line := domain.SaleLine{
		Brand:     "VoltMax",
		Rating:    "12V",
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(90),
		UnitCost:  decimal.NewFromInt(50),
	}

	line.Compute()

	assert.True(t, decimal.NewFromInt(270).Equal(line.Subtotal), "subtotal = qty * price")
	assert.True(t, decimal.NewFromInt(120).Equal(line.Profit), "profit = qty * (price - cost)")
}

func TestSale_PrepareForStorage(t *testing.T) {
	sale := &domain.Sale{
		StoreID: uuid.New(),
		Lines: []domain.SaleLine{
			{Brand: "VoltMax", Rating: "12V", Quantity: 2, UnitPrice: decimal.NewFromInt(90), UnitCost: decimal.NewFromInt(50)},
			{Brand: "Amptek", Rating: "9V", Quantity: 1, UnitPrice: decimal.NewFromInt(40), UnitCost: decimal.NewFromInt(25)},
		},
	}

	sale.PrepareForStorage()

	require.NotEqual(t, uuid.Nil, sale.ID)
	assert.False(t, sale.SaleDate.IsZero())
	for _, l := range sale.Lines {
		assert.NotEqual(t, uuid.Nil, l.ID)
		assert.Equal(t, sale.ID, l.SaleID)
	}

	// 2*90 + 1*40 revenue; 2*50 + 1*25 cost
	assert.True(t, decimal.NewFromInt(220).Equal(sale.TotalRevenue))
	assert.True(t, decimal.NewFromInt(125).Equal(sale.TotalCost))
	assert.True(t, decimal.NewFromInt(95).Equal(sale.Profit))

	// profit must equal the sum of line profits
	lineProfit := decimal.Zero
	for _, l := range sale.Lines {
		lineProfit = lineProfit.Add(l.Profit)
	}
	assert.True(t, sale.Profit.Equal(lineProfit))
}

func TestSaleLine_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.SaleLine)
		wantErr bool
	}{
		{name: "valid", mutate: func(l *domain.SaleLine) {}},
		{name: "missing_brand", mutate: func(l *domain.SaleLine) { l.Brand = "" }, wantErr: true},
		{name: "missing_rating", mutate: func(l *domain.SaleLine) { l.Rating = "" }, wantErr: true},
		{name: "zero_quantity", mutate: func(l *domain.SaleLine) { l.Quantity = 0 }, wantErr: true},
		{name: "negative_quantity", mutate: func(l *domain.SaleLine) { l.Quantity = -2 }, wantErr: true},
		{name: "negative_price", mutate: func(l *domain.SaleLine) { l.UnitPrice = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "negative_cost", mutate: func(l *domain.SaleLine) { l.UnitCost = decimal.NewFromInt(-1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := domain.SaleLine{
				Brand:     "VoltMax",
				Rating:    "12V",
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(90),
				UnitCost:  decimal.NewFromInt(50),
			}
			tt.mutate(&line)

			err := line.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTallyUnits(t *testing.T) {
	storeA := uuid.New()
	key := domain.StockKey{Brand: "VoltMax", Rating: "12V"}

	lines := []domain.StockLine{
		{Brand: "VoltMax", Rating: "12V", Quantity: 6},                   // central
		{StoreID: storeA, Brand: "VoltMax", Rating: "12V", Quantity: 3},  // store
		{StoreID: storeA, Brand: "VoltMax", Rating: "12V", Quantity: 0},  // drained line counts nothing
	}
	shipments := []domain.Shipment{
		{
			Status: domain.ShipmentPending,
			Lines:  []domain.ShipmentLine{{Brand: "VoltMax", Rating: "12V", Quantity: 4}},
		},
		{
			Status: domain.ShipmentCompleted, // terminal: units already in a pool
			Lines:  []domain.ShipmentLine{{Brand: "VoltMax", Rating: "12V", Quantity: 9}},
		},
	}

	census := domain.TallyUnits(lines, shipments)
	assert.Equal(t, 13, census[key])

	other := domain.UnitCensus{key: 13}
	assert.True(t, census.Equal(other))
	assert.False(t, census.Equal(domain.UnitCensus{key: 12}))
}
