package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/repository"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// OrderService implements the business logic for order operations.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	metrics *Metrics,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		producer: producer,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	UserID        string
	ShippingInfo  domain.ShippingInfo
	OrderItems    []domain.OrderItem
	PaymentInfo   domain.PaymentInfo
	ItemsPrice    float64
	TaxPrice      float64
	ShippingPrice float64
	TotalPrice    float64
}

// CreateOrder places a paid order in the Processing state.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user is required")
	}
	if len(input.OrderItems) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:            uuid.New().String(),
		ShippingInfo:  input.ShippingInfo,
		OrderItems:    input.OrderItems,
		UserID:        input.UserID,
		PaymentInfo:   input.PaymentInfo,
		PaidAt:        now,
		ItemsPrice:    input.ItemsPrice,
		TaxPrice:      input.TaxPrice,
		ShippingPrice: input.ShippingPrice,
		TotalPrice:    input.TotalPrice,
		OrderStatus:   domain.OrderStatusProcessing,
		CreatedAt:     now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.Int("items", len(order.OrderItems)),
	)

	return order, nil
}

// GetOrder retrieves an order. Only its owner or an admin may read it.
func (s *OrderService) GetOrder(ctx context.Context, id string, requester *domain.User) (*domain.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.ID && !requester.IsAdmin() {
		return nil, apperrors.Forbidden("you are not allowed to access this order")
	}
	return order, nil
}

func (s *OrderService) getOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Order", id)
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// MyOrders returns the orders placed by userID.
func (s *OrderService) MyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	return orders, nil
}

// ListOrders returns every order and the sum of their total prices.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, float64, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	var total float64
	for _, o := range orders {
		total += o.TotalPrice
	}
	return orders, total, nil
}

// UpdateOrderStatus moves an order to status. Shipping an order takes its
// quantities out of product stock; if any product lacks stock, stock taken
// for earlier items is put back and the order is unchanged.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	prior := order.OrderStatus
	if err := order.TransitionTo(status, s.now().UTC()); err != nil {
		return nil, err
	}

	var taken []domain.OrderItem
	if status == domain.OrderStatusShipped {
		taken, err = s.takeStock(ctx, order.OrderItems)
		if err != nil {
			return nil, err
		}
	}

	if err := s.orders.Update(ctx, order); err != nil {
		s.restoreStock(ctx, taken)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Order", id)
		}
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, order, prior); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("from", prior),
		slog.String("to", order.OrderStatus),
	)

	return order, nil
}

// takeStock decrements stock for every item and returns the items whose
// stock was taken. Products that no longer exist are skipped.
func (s *OrderService) takeStock(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	taken := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		_, err := updateProduct(ctx, s.products, s.metrics, item.ProductID, func(p *domain.Product) (bool, error) {
			return true, p.DecrementStock(item.Quantity)
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.logger.WarnContext(ctx, "ordered product no longer exists",
					slog.String("product_id", item.ProductID),
				)
				continue
			}
			s.restoreStock(ctx, taken)
			return nil, err
		}
		taken = append(taken, item)
	}
	return taken, nil
}

// restoreStock puts back stock taken by takeStock on a best-effort basis.
func (s *OrderService) restoreStock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		_, err := updateProduct(ctx, s.products, s.metrics, item.ProductID, func(p *domain.Product) (bool, error) {
			p.Stock += item.Quantity
			return true, nil
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to restore product stock",
				slog.String("product_id", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
		}
	}
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("Order", id)
		}
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", id),
	)

	return nil
}
