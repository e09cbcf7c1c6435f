// internal/core/domain/shipment_test.go
package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltdepot/stock-be/internal/core/domain"
)

func TestShipmentStatus_NextStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     domain.ShipmentStatus
		op       string
		want     domain.ShipmentStatus
		wantErr  error
		terminal bool
	}{
		{
			name: "pending_confirm",
			from: domain.ShipmentPending,
			op:   domain.ShipmentOpConfirm,
			want: domain.ShipmentCompleted,
		},
		{
			name: "pending_cancel",
			from: domain.ShipmentPending,
			op:   domain.ShipmentOpCancel,
			want: domain.ShipmentCancelled,
		},
		{
			name: "pending_price_stays_pending",
			from: domain.ShipmentPending,
			op:   domain.ShipmentOpPrice,
			want: domain.ShipmentPending,
		},
		{
			name: "prices_assigned_confirm",
			from: domain.ShipmentPricesAssigned,
			op:   domain.ShipmentOpConfirm,
			want: domain.ShipmentCompleted,
		},
		{
			name: "prices_assigned_cancel",
			from: domain.ShipmentPricesAssigned,
			op:   domain.ShipmentOpCancel,
			want: domain.ShipmentCancelled,
		},
		{
			name:    "completed_confirm_rejected",
			from:    domain.ShipmentCompleted,
			op:      domain.ShipmentOpConfirm,
			wantErr: domain.ErrAlreadyTerminal,
		},
		{
			name:    "completed_cancel_rejected",
			from:    domain.ShipmentCompleted,
			op:      domain.ShipmentOpCancel,
			wantErr: domain.ErrAlreadyTerminal,
		},
		{
			name:    "cancelled_confirm_rejected",
			from:    domain.ShipmentCancelled,
			op:      domain.ShipmentOpConfirm,
			wantErr: domain.ErrAlreadyTerminal,
		},
		{
			name:    "cancelled_cancel_rejected",
			from:    domain.ShipmentCancelled,
			op:      domain.ShipmentOpCancel,
			wantErr: domain.ErrAlreadyTerminal,
		},
		{
			name:    "completed_price_rejected",
			from:    domain.ShipmentCompleted,
			op:      domain.ShipmentOpPrice,
			wantErr: domain.ErrAlreadyTerminal,
		},
		{
			name:    "unknown_state_rejected_by_default",
			from:    domain.ShipmentStatus("shipped"),
			op:      domain.ShipmentOpConfirm,
			wantErr: domain.ErrInvalidStateTransition,
		},
		{
			name:    "unknown_op_rejected_by_default",
			from:    domain.ShipmentPending,
			op:      "reopen",
			wantErr: domain.ErrInvalidStateTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.from.NextStatus(tt.op)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestShipment_FullyPriced(t *testing.T) {
	price := decimal.NewFromInt(90)

	t.Run("no_lines_is_not_priced", func(t *testing.T) {
		s := &domain.Shipment{}
		assert.False(t, s.FullyPriced())
	})

	t.Run("one_unpriced_line_blocks", func(t *testing.T) {
		s := &domain.Shipment{Lines: []domain.ShipmentLine{
			{Brand: "VoltMax", Rating: "12V", Quantity: 2, StorePrice: &price},
			{Brand: "VoltMax", Rating: "6V", Quantity: 1},
		}}
		assert.False(t, s.FullyPriced())
	})

	t.Run("all_lines_priced", func(t *testing.T) {
		s := &domain.Shipment{Lines: []domain.ShipmentLine{
			{Brand: "VoltMax", Rating: "12V", Quantity: 2, StorePrice: &price},
			{Brand: "VoltMax", Rating: "6V", Quantity: 1, StorePrice: &price},
		}}
		assert.True(t, s.FullyPriced())
	})
}

func TestShipment_RecomputeTotals(t *testing.T) {
	s := &domain.Shipment{Lines: []domain.ShipmentLine{
		{Brand: "VoltMax", Rating: "12V", Quantity: 4},
		{Brand: "Amptek", Rating: "9V", Quantity: 3},
	}}

	s.RecomputeTotals()

	assert.Equal(t, 2, s.TotalLineItems)
	assert.Equal(t, 7, s.TotalUnits)
}

func TestStateTransitionError_Unwrap(t *testing.T) {
	terminal := &domain.StateTransitionError{From: domain.ShipmentCancelled, Op: domain.ShipmentOpConfirm}
	assert.True(t, errors.Is(terminal, domain.ErrAlreadyTerminal))

	nonTerminal := &domain.StateTransitionError{From: domain.ShipmentStatus("bogus"), Op: domain.ShipmentOpConfirm}
	assert.True(t, errors.Is(nonTerminal, domain.ErrInvalidStateTransition))
}
