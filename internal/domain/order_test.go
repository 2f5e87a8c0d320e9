package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

func TestOrder_TransitionTo(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, false},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, false},
		{"processing to delivered", OrderStatusProcessing, OrderStatusDelivered, true},
		{"shipped to processing", OrderStatusShipped, OrderStatusProcessing, true},
		{"already delivered", OrderStatusDelivered, OrderStatusShipped, true},
		{"unknown status", OrderStatusProcessing, "Lost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{OrderStatus: tt.from}
			err := o.TransitionTo(tt.to, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				assert.Equal(t, tt.from, o.OrderStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.OrderStatus)
		})
	}
}

func TestOrder_DeliveredStampsTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	o := Order{OrderStatus: OrderStatusShipped}

	require.NoError(t, o.TransitionTo(OrderStatusDelivered, now))
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, now, *o.DeliveredAt)
}

func TestOrder_AlreadyDeliveredMessage(t *testing.T) {
	o := Order{OrderStatus: OrderStatusDelivered}
	err := o.TransitionTo(OrderStatusDelivered, time.Now())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "You have already delivered this order", appErr.Message)
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleUser))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("root"))
	assert.False(t, IsValidRole(""))
}
