// internal/handlers/expense.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// ExpenseHandler handles expense ledger HTTP requests
type ExpenseHandler struct {
	service ports.ExpenseService
	logger  *slog.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(service ports.ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "expense")),
	}
}

// RecordExpenseRequest is the body for recording an expense.
type RecordExpenseRequest struct {
	StoreID     uuid.UUID       `json:"store_id"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate *time.Time      `json:"expense_date,omitempty"`
}

// Record handles POST /api/v1/expenses
func (h *ExpenseHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense := &domain.Expense{
		StoreID:     req.StoreID,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.ExpenseDate != nil {
		expense.ExpenseDate = *req.ExpenseDate
	}

	if err := h.service.Record(ctx, expense); err != nil {
		h.logger.ErrorContext(ctx, "failed to record expense",
			slog.String("store_id", req.StoreID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, expense)
}

// Delete handles DELETE /api/v1/expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenseID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	if err := h.service.Delete(ctx, expenseID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete expense",
			slog.String("expense_id", expenseID.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"message":    "Expense deleted",
		"expense_id": expenseID.String(),
	})
}

// Get handles GET /api/v1/expenses/{id}
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenseID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	expense, err := h.service.GetByID(ctx, expenseID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, expense)
}

// List handles GET /api/v1/expenses
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.ExpenseListParams{Page: 1, PageSize: 20}
	q := r.URL.Query()

	if v := q.Get("store_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid store_id format")
			return
		}
		params.StoreID = &id
	}
	params.Category = q.Get("category")
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.DateTo = &t
		}
	}
	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			params.Page = p
		}
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			params.PageSize = l
		}
	}

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list expenses",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// Categories handles GET /api/v1/expenses/categories
func (h *ExpenseHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID := uuid.Nil
	if s := r.URL.Query().Get("store_id"); s != "" {
		parsed, err := uuid.Parse(s)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid store ID format")
			return
		}
		storeID = parsed
	}

	categories, err := h.service.CategorySuggestions(ctx, storeID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}
