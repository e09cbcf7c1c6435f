// internal/handlers/sale_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/services"
	"github.com/voltdepot/stock-be/internal/handlers"
	"github.com/voltdepot/stock-be/test/helpers"
	"github.com/voltdepot/stock-be/test/mocks"
)

func newSaleHandler(t *testing.T, repo *mocks.FakeSaleRepository, stores ...domain.Store) *handlers.SaleHandler {
	t.Helper()
	service := services.NewSaleService(repo, mocks.NewFakeStoreRepository(stores...), &mocks.FakeNotifier{}, helpers.TestLogger())
	return handlers.NewSaleHandler(service, helpers.TestLogger())
}

func TestSaleHandler_Register(t *testing.T) {
	store := helpers.CreateTestStore()

	t.Run("malformed_body_rejected", func(t *testing.T) {
		handler := newSaleHandler(t, &mocks.FakeSaleRepository{}, store)

		req := httptest.NewRequest("POST", "/api/v1/sales", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", errorMessage(t, w.Body.Bytes()))
	})

	t.Run("central_store_rejected", func(t *testing.T) {
		handler := newSaleHandler(t, &mocks.FakeSaleRepository{}, store)

		body := map[string]interface{}{
			"store_id": uuid.Nil.String(),
			"lines": []map[string]interface{}{
				{"brand": "Exide", "rating": "35Ah", "quantity": 1, "unit_price": "3200"},
			},
		}
		req := httptest.NewRequest("POST", "/api/v1/sales", jsonBody(t, body))
		w := httptest.NewRecorder()

		handler.Register(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("insufficient_store_stock_conflicts", func(t *testing.T) {
		repo := &mocks.FakeSaleRepository{
			RegisterFn: func(ctx context.Context, sale *domain.Sale) error {
				return &domain.InsufficientStockError{
					Location:  domain.StoreLocation(store.ID),
					Brand:     "Exide",
					Rating:    "35Ah",
					Requested: 500,
					Available: 7,
				}
			},
		}
		handler := newSaleHandler(t, repo, store)

		body := map[string]interface{}{
			"store_id": store.ID.String(),
			"lines": []map[string]interface{}{
				{"brand": "Exide", "rating": "35Ah", "quantity": 500, "unit_price": "3200"},
			},
		}
		req := httptest.NewRequest("POST", "/api/v1/sales", jsonBody(t, body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, errorMessage(t, w.Body.Bytes()), "requested 500, available 7")
	})

	t.Run("successful_registration_created", func(t *testing.T) {
		repo := &mocks.FakeSaleRepository{
			RegisterFn: func(ctx context.Context, sale *domain.Sale) error {
				sale.PrepareForStorage()
				return nil
			},
		}
		handler := newSaleHandler(t, repo, store)

		body := map[string]interface{}{
			"store_id": store.ID.String(),
			"notes":    "walk-in customer",
			"lines": []map[string]interface{}{
				{"brand": "Exide", "rating": "35Ah", "quantity": 3,
					"unit_price": "3200", "unit_cost": "2400"},
			},
		}
		req := httptest.NewRequest("POST", "/api/v1/sales", jsonBody(t, body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var sale domain.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
		assert.Equal(t, store.ID, sale.StoreID)
		// The negotiated cost rides through to the stored sale untouched.
		assert.True(t, sale.Lines[0].UnitCost.Equal(decimal.NewFromInt(2400)))
		assert.True(t, sale.TotalRevenue.Equal(decimal.NewFromInt(9600)))
		assert.True(t, sale.Profit.Equal(decimal.NewFromInt(2400)))
	})
}

func TestSaleHandler_Delete(t *testing.T) {
	saleID := uuid.New()

	t.Run("invalid_id_rejected", func(t *testing.T) {
		handler := newSaleHandler(t, &mocks.FakeSaleRepository{})

		req := httptest.NewRequest("DELETE", "/api/v1/sales/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid sale ID format", errorMessage(t, w.Body.Bytes()))
	})

	t.Run("missing_sale_not_found", func(t *testing.T) {
		repo := &mocks.FakeSaleRepository{
			FindByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
				return nil, domain.ErrNotFound
			},
		}
		handler := newSaleHandler(t, repo)

		req := httptest.NewRequest("DELETE", "/api/v1/sales/"+saleID.String(), nil)
		req.SetPathValue("id", saleID.String())
		w := httptest.NewRecorder()

		handler.Delete(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("successful_delete", func(t *testing.T) {
		repo := &mocks.FakeSaleRepository{
			FindByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
				return &domain.Sale{ID: id, StoreID: uuid.New()}, nil
			},
			DeleteFn: func(ctx context.Context, id uuid.UUID) error { return nil },
		}
		handler := newSaleHandler(t, repo)

		req := httptest.NewRequest("DELETE", "/api/v1/sales/"+saleID.String(), nil)
		req.SetPathValue("id", saleID.String())
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, saleID.String(), resp["sale_id"])
	})
}
