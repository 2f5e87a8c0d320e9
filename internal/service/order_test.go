package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/repository/memory"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// --- Mock Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestOrderService(orders *mockOrderRepository) (*OrderService, *memory.ProductRepository) {
	products := memory.NewProductRepository()
	return NewOrderService(orders, products, nil, newTestMetrics(), newTestLogger()), products
}

func sampleOrder(items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:          uuid.NewString(),
		UserID:      "owner",
		OrderItems:  items,
		TotalPrice:  100,
		OrderStatus: domain.OrderStatusProcessing,
	}
}

func item(productID string, qty int) domain.OrderItem {
	return domain.OrderItem{ProductID: productID, Name: "item", Price: 10, Quantity: qty}
}

// --- Tests ---

func TestCreateOrder_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()

	orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		UserID:     "owner",
		OrderItems: []domain.OrderItem{item(uuid.NewString(), 1)},
		PaymentInfo: domain.PaymentInfo{
			ID: "pi_1", Status: "succeeded",
		},
		TotalPrice: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusProcessing, order.OrderStatus)
	assert.False(t, order.PaidAt.IsZero())
	assert.Equal(t, "owner", order.UserID)
	orders.AssertExpectations(t)
}

func TestCreateOrder_NoItems(t *testing.T) {
	svc, _ := newTestOrderService(new(mockOrderRepository))

	_, err := svc.CreateOrder(context.Background(), &CreateOrderInput{UserID: "owner"})
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func TestGetOrder_Access(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()
	order := sampleOrder()

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.GetOrder(ctx, order.ID, &domain.User{ID: "owner", Role: domain.RoleUser})
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, order.ID, &domain.User{ID: "admin", Role: domain.RoleAdmin})
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, order.ID, &domain.User{ID: "stranger", Role: domain.RoleUser})
	assert.Equal(t, http.StatusForbidden, apperrors.HTTPStatus(err))
}

func TestGetOrder_NotFound(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()

	orders.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetOrder(ctx, "missing", &domain.User{ID: "owner"})
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
}

func TestListOrders_TotalAmount(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()

	orders.On("List", ctx).Return([]domain.Order{{TotalPrice: 10.5}, {TotalPrice: 20}}, nil)

	list, total, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 30.5, total)
}

func TestUpdateOrderStatus_ShipDecrementsStock(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, products := newTestOrderService(orders)
	ctx := context.Background()

	a := seedProduct(t, products, "A", 10)
	b := seedProduct(t, products, "B", 10)
	order := sampleOrder(item(a.ID, 3), item(b.ID, 10))

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil)

	updated, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.OrderStatus)

	storedA, _ := products.GetByID(ctx, a.ID)
	storedB, _ := products.GetByID(ctx, b.ID)
	assert.Equal(t, 7, storedA.Stock)
	assert.Equal(t, 0, storedB.Stock)
}

func TestUpdateOrderStatus_InsufficientStockRestores(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, products := newTestOrderService(orders)
	ctx := context.Background()

	a := seedProduct(t, products, "A", 10)
	b := seedProduct(t, products, "B", 10)
	order := sampleOrder(item(a.ID, 3), item(b.ID, 11))

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))

	storedA, _ := products.GetByID(ctx, a.ID)
	assert.Equal(t, 10, storedA.Stock)
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_OrderWriteFailureRestores(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, products := newTestOrderService(orders)
	ctx := context.Background()

	a := seedProduct(t, products, "A", 10)
	order := sampleOrder(item(a.ID, 4))

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("Update", ctx, order).Return(errors.New("connection reset"))

	_, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.Error(t, err)

	storedA, _ := products.GetByID(ctx, a.ID)
	assert.Equal(t, 10, storedA.Stock)
}

func TestUpdateOrderStatus_SkipsDeletedProducts(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, products := newTestOrderService(orders)
	ctx := context.Background()

	a := seedProduct(t, products, "A", 10)
	order := sampleOrder(item(uuid.NewString(), 1), item(a.ID, 2))

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil)

	_, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	storedA, _ := products.GetByID(ctx, a.ID)
	assert.Equal(t, 8, storedA.Stock)
}

func TestUpdateOrderStatus_Deliver(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()

	order := sampleOrder()
	order.OrderStatus = domain.OrderStatusShipped

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("Update", ctx, order).Return(nil)

	updated, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveredAt)
}

func TestUpdateOrderStatus_AlreadyDelivered(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()

	order := sampleOrder()
	order.OrderStatus = domain.OrderStatusDelivered

	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "already delivered")
}

func TestDeleteOrder(t *testing.T) {
	orders := new(mockOrderRepository)
	svc, _ := newTestOrderService(orders)
	ctx := context.Background()

	orders.On("Delete", ctx, "o1").Return(nil)
	orders.On("Delete", ctx, "missing").Return(apperrors.ErrNotFound)

	assert.NoError(t, svc.DeleteOrder(ctx, "o1"))
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(svc.DeleteOrder(ctx, "missing")))
}
