package postgres

import (
	"context"
	"encoding/json"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

var orderColumns = []string{
	"id", "user_id", "shipping_info", "order_items", "payment_info", "paid_at",
	"items_price", "tax_price", "shipping_price", "total_price", "order_status", "delivered_at", "created_at",
}

func sampleOrder() domain.Order {
	return domain.Order{
		ID:     "5e3b2a10-7c1d-4e2f-9a8b-0c1d2e3f4a5b",
		UserID: "9c1f7e2a-6b1d-4d1e-8f3a-1a2b3c4d5e6f",
		ShippingInfo: domain.ShippingInfo{
			Address: "1 Main St", City: "Pune", State: "MH", Country: "IN", PinCode: "411001", PhoneNo: "9999999999",
		},
		OrderItems: []domain.OrderItem{
			{ProductID: "0b7c5a9e-2f0d-4c43-9a55-5d7f0c1e8a01", Name: "Trail Shoe", Price: 4999, Quantity: 2},
		},
		PaymentInfo:   domain.PaymentInfo{ID: "pi_123", Status: "succeeded"},
		PaidAt:        now,
		ItemsPrice:    9998,
		TaxPrice:      1799.64,
		ShippingPrice: 0,
		TotalPrice:    11797.64,
		OrderStatus:   domain.OrderStatusProcessing,
		CreatedAt:     now,
	}
}

func orderRow(o domain.Order) []any {
	shipping, _ := json.Marshal(o.ShippingInfo)
	items, _ := json.Marshal(o.OrderItems)
	payment, _ := json.Marshal(o.PaymentInfo)
	return []any{
		o.ID, o.UserID, shipping, items, payment, o.PaidAt,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice, o.OrderStatus, o.DeliveredAt, o.CreatedAt,
	}
}

func TestOrderRepository_Create(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	o := sampleOrder()
	row := orderRow(o)
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(row...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	o := sampleOrder()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(o.ID).
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(orderRow(o)...))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, *got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByUser(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	o := sampleOrder()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE user_id").
		WithArgs(o.UserID).
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(orderRow(o)...))

	orders, err := repo.ListByUser(context.Background(), o.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].OrderItems[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	o := sampleOrder()
	delivered := now
	o.OrderStatus = domain.OrderStatusDelivered
	o.DeliveredAt = &delivered

	mock.ExpectExec("UPDATE orders SET order_status").
		WithArgs(o.OrderStatus, o.DeliveredAt, o.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM orders").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Update(context.Background(), &o))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
