package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// OrderHandler handles order HTTP endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateOrderRequest is the request body for placing an order.
type CreateOrderRequest struct {
	ShippingInfo  domain.ShippingInfo `json:"shippingInfo" validate:"required"`
	OrderItems    []domain.OrderItem  `json:"orderItems" validate:"required,min=1,dive"`
	PaymentInfo   domain.PaymentInfo  `json:"paymentInfo" validate:"required"`
	ItemsPrice    float64             `json:"itemsPrice" validate:"gte=0"`
	TaxPrice      float64             `json:"taxPrice" validate:"gte=0"`
	ShippingPrice float64             `json:"shippingPrice" validate:"gte=0"`
	TotalPrice    float64             `json:"totalPrice" validate:"gte=0"`
}

// UpdateOrderRequest is the request body for changing an order's status.
type UpdateOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

type ordersResponse struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

type adminOrdersResponse struct {
	Success     bool           `json:"success"`
	TotalAmount float64        `json:"totalAmount"`
	Orders      []domain.Order `json:"orders"`
}

// CreateOrder handles POST /api/v1/order/new.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &service.CreateOrderInput{
		UserID:        userFromContext(r.Context()).ID,
		ShippingInfo:  req.ShippingInfo,
		OrderItems:    req.OrderItems,
		PaymentInfo:   req.PaymentInfo,
		ItemsPrice:    req.ItemsPrice,
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, orderResponse{Success: true, Order: order})
}

// GetOrder handles GET /api/v1/order/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id.String(), userFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderResponse{Success: true, Order: order})
}

// MyOrders handles GET /api/v1/orders/me.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.MyOrders(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ordersResponse{Success: true, Orders: nonNil(orders)})
}

// ListOrders handles GET /api/v1/admin/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, total, err := h.service.ListOrders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, adminOrdersResponse{
		Success:     true,
		TotalAmount: total,
		Orders:      nonNil(orders),
	})
}

// UpdateOrder handles PUT /api/v1/admin/order/{id}.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if _, err := h.service.UpdateOrderStatus(r.Context(), id.String(), req.Status); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK)
}

// DeleteOrder handles DELETE /api/v1/admin/order/{id}.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK)
}
