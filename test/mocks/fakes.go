// test/mocks/fakes.go

// Package mocks contains hand-written fakes for the application's ports.
// The stock fake is stateful so tests can assert unit conservation across
// sequences of operations; the other repository fakes use overridable
// function fields.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

type lineKey struct {
	storeID uuid.UUID
	brand   string
	rating  string
}

// FakeStockRepository is an in-memory stock ledger with the same reserve and
// release semantics as the real repository.
type FakeStockRepository struct {
	mu    sync.Mutex
	lines map[lineKey]domain.StockLine

	// FailKeys forces MoveToCentral to fail for the named (brand, rating)
	// keys, for partial-failure tests.
	FailKeys map[domain.StockKey]error
}

var _ ports.StockRepository = (*FakeStockRepository)(nil)

// NewFakeStockRepository creates an empty in-memory ledger.
func NewFakeStockRepository() *FakeStockRepository {
	return &FakeStockRepository{
		lines:    make(map[lineKey]domain.StockLine),
		FailKeys: make(map[domain.StockKey]error),
	}
}

// Seed places a line into the ledger, replacing any existing line.
func (f *FakeStockRepository) Seed(line domain.StockLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[lineKey{line.StoreID, line.Brand, line.Rating}] = line
}

// TotalUnits returns the number of units currently in the ledger.
func (f *FakeStockRepository) TotalUnits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, l := range f.lines {
		total += l.Quantity
	}
	return total
}

func (f *FakeStockRepository) Reserve(ctx context.Context, loc domain.Location, brand, rating string, qty int) (domain.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := lineKey{loc.StoreID, brand, rating}
	line, ok := f.lines[key]
	if !ok || line.Quantity < qty {
		return domain.PriceSnapshot{}, &domain.InsufficientStockError{
			Location:  loc,
			Brand:     brand,
			Rating:    rating,
			Requested: qty,
			Available: line.Quantity,
		}
	}

	snap := domain.PriceSnapshot{UnitCost: line.UnitCost, UnitPrice: line.UnitPrice}
	line.Quantity -= qty
	f.lines[key] = line
	return snap, nil
}

func (f *FakeStockRepository) Release(ctx context.Context, loc domain.Location, brand, rating string, qty int, cost, price decimal.Decimal, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := lineKey{loc.StoreID, brand, rating}
	line, ok := f.lines[key]
	if !ok {
		f.lines[key] = domain.StockLine{
			StoreID:   loc.StoreID,
			Brand:     brand,
			Rating:    rating,
			Quantity:  qty,
			UnitCost:  cost,
			UnitPrice: price,
		}
		return nil
	}

	line.Quantity += qty
	if overwrite {
		line.UnitCost = cost
		line.UnitPrice = price
	}
	f.lines[key] = line
	return nil
}

func (f *FakeStockRepository) MoveToCentral(ctx context.Context, line domain.StockLine) error {
	if err, ok := f.FailKeys[domain.StockKey{Brand: line.Brand, Rating: line.Rating}]; ok {
		return err
	}

	if _, err := f.Reserve(ctx, line.Location(), line.Brand, line.Rating, line.Quantity); err != nil {
		return err
	}
	return f.Release(ctx, domain.Central, line.Brand, line.Rating, line.Quantity, line.UnitCost, line.UnitPrice, false)
}

func (f *FakeStockRepository) CommitOpeningBalance(ctx context.Context, storeID uuid.UUID, lines []domain.ImportLine, mode domain.ImportMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, l := range lines {
		key := lineKey{storeID, l.Brand, l.Rating}
		existing, ok := f.lines[key]
		if !ok {
			f.lines[key] = domain.StockLine{
				StoreID:   storeID,
				Brand:     l.Brand,
				Rating:    l.Rating,
				Quantity:  l.Quantity,
				UnitCost:  decimal.Zero,
				UnitPrice: l.Price,
			}
			continue
		}

		switch mode {
		case domain.ImportModeSum:
			existing.Quantity += l.Quantity
		case domain.ImportModeReplace:
			existing.Quantity = l.Quantity
		}
		existing.UnitPrice = l.Price
		f.lines[key] = existing
	}
	return nil
}

func (f *FakeStockRepository) Find(ctx context.Context, loc domain.Location, brand, rating string) (*domain.StockLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, ok := f.lines[lineKey{loc.StoreID, brand, rating}]
	if !ok {
		return nil, nil
	}
	found := line
	return &found, nil
}

func (f *FakeStockRepository) ListByLocation(ctx context.Context, loc domain.Location) ([]domain.StockLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.StockLine
	for _, l := range f.lines {
		if l.StoreID == loc.StoreID && l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *FakeStockRepository) ListAll(ctx context.Context) ([]domain.StockLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.StockLine
	for _, l := range f.lines {
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *FakeStockRepository) PruneZero(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pruned int64
	for k, l := range f.lines {
		if l.Quantity == 0 {
			delete(f.lines, k)
			pruned++
		}
	}
	return pruned, nil
}

// FakeStoreRepository is an in-memory store registry.
type FakeStoreRepository struct {
	mu     sync.Mutex
	stores map[uuid.UUID]domain.Store
}

var _ ports.StoreRepository = (*FakeStoreRepository)(nil)

// NewFakeStoreRepository creates a registry pre-populated with the given
// stores.
func NewFakeStoreRepository(stores ...domain.Store) *FakeStoreRepository {
	f := &FakeStoreRepository{stores: make(map[uuid.UUID]domain.Store)}
	for _, s := range stores {
		f.stores[s.ID] = s
	}
	return f
}

func (f *FakeStoreRepository) Save(ctx context.Context, store *domain.Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores[store.ID] = *store
	return nil
}

func (f *FakeStoreRepository) FindByID(ctx context.Context, storeID uuid.UUID) (*domain.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[storeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	found := s
	return &found, nil
}

func (f *FakeStoreRepository) FindAll(ctx context.Context) ([]domain.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Store, 0, len(f.stores))
	for _, s := range f.stores {
		out = append(out, s)
	}
	return out, nil
}

// FakeNotifier records every published change.
type FakeNotifier struct {
	mu      sync.Mutex
	Changes []ports.Change
}

var _ ports.ChangeNotifier = (*FakeNotifier)(nil)

func (f *FakeNotifier) Notify(ctx context.Context, change ports.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Changes = append(f.Changes, change)
}

// ChangesFor returns the recorded changes for one entity kind.
func (f *FakeNotifier) ChangesFor(entity string) []ports.Change {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.Change
	for _, c := range f.Changes {
		if c.Entity == entity {
			out = append(out, c)
		}
	}
	return out
}

// FakeShipmentRepository delegates to overridable function fields.
type FakeShipmentRepository struct {
	CreateStagedFn func(ctx context.Context, shipment *domain.Shipment) error
	AssignPricesFn func(ctx context.Context, shipmentID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) (*domain.Shipment, error)
	ConfirmFn      func(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	CancelFn       func(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	FindByIDFn     func(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	ListFn         func(ctx context.Context, params ports.ShipmentListParams) ([]domain.Shipment, int64, error)
}

var _ ports.ShipmentRepository = (*FakeShipmentRepository)(nil)

func (f *FakeShipmentRepository) CreateStaged(ctx context.Context, shipment *domain.Shipment) error {
	return f.CreateStagedFn(ctx, shipment)
}

func (f *FakeShipmentRepository) AssignPrices(ctx context.Context, shipmentID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) (*domain.Shipment, error) {
	return f.AssignPricesFn(ctx, shipmentID, prices)
}

func (f *FakeShipmentRepository) Confirm(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	return f.ConfirmFn(ctx, shipmentID)
}

func (f *FakeShipmentRepository) Cancel(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	return f.CancelFn(ctx, shipmentID)
}

func (f *FakeShipmentRepository) FindByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	return f.FindByIDFn(ctx, shipmentID)
}

func (f *FakeShipmentRepository) List(ctx context.Context, params ports.ShipmentListParams) ([]domain.Shipment, int64, error) {
	return f.ListFn(ctx, params)
}

// FakeSaleRepository delegates to overridable function fields.
type FakeSaleRepository struct {
	RegisterFn func(ctx context.Context, sale *domain.Sale) error
	DeleteFn   func(ctx context.Context, saleID uuid.UUID) error
	FindByIDFn func(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error)
	ListFn     func(ctx context.Context, params ports.SaleListParams) ([]domain.Sale, int64, error)
}

var _ ports.SaleRepository = (*FakeSaleRepository)(nil)

func (f *FakeSaleRepository) Register(ctx context.Context, sale *domain.Sale) error {
	return f.RegisterFn(ctx, sale)
}

func (f *FakeSaleRepository) Delete(ctx context.Context, saleID uuid.UUID) error {
	return f.DeleteFn(ctx, saleID)
}

func (f *FakeSaleRepository) FindByID(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	return f.FindByIDFn(ctx, saleID)
}

func (f *FakeSaleRepository) List(ctx context.Context, params ports.SaleListParams) ([]domain.Sale, int64, error) {
	return f.ListFn(ctx, params)
}

// FakeExpenseRepository is an in-memory expense ledger.
type FakeExpenseRepository struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]domain.Expense
}

var _ ports.ExpenseRepository = (*FakeExpenseRepository)(nil)

func NewFakeExpenseRepository() *FakeExpenseRepository {
	return &FakeExpenseRepository{expenses: make(map[uuid.UUID]domain.Expense)}
}

func (f *FakeExpenseRepository) Save(ctx context.Context, expense *domain.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenses[expense.ID] = *expense
	return nil
}

func (f *FakeExpenseRepository) Delete(ctx context.Context, expenseID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.expenses[expenseID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.expenses, expenseID)
	return nil
}

func (f *FakeExpenseRepository) FindByID(ctx context.Context, expenseID uuid.UUID) (*domain.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[expenseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	found := e
	return &found, nil
}

func (f *FakeExpenseRepository) List(ctx context.Context, params ports.ExpenseListParams) ([]domain.Expense, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Expense
	for _, e := range f.expenses {
		if params.StoreID != nil && e.StoreID != *params.StoreID {
			continue
		}
		if params.Category != "" && e.Category != params.Category {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (f *FakeExpenseRepository) Categories(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range f.expenses {
		if storeID != uuid.Nil && e.StoreID != storeID {
			continue
		}
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out, nil
}

func (f *FakeExpenseRepository) TotalByStore(ctx context.Context, storeID uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, e := range f.expenses {
		if e.StoreID != storeID {
			continue
		}
		if from != nil && e.ExpenseDate.Before(*from) {
			continue
		}
		if to != nil && e.ExpenseDate.After(*to) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}
