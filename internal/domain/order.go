package domain

import (
	"time"

	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// Order status constants.
const (
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
)

// allowedTransitions maps each status to the statuses it may move to.
var allowedTransitions = map[string][]string{
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
}

// ShippingInfo is the delivery address of an order.
type ShippingInfo struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
	PinCode string `json:"pinCode" validate:"required"`
	PhoneNo string `json:"phoneNo" validate:"required"`
}

// OrderItem is one product line of an order, priced at order time.
type OrderItem struct {
	ProductID string  `json:"product" validate:"required,uuid"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Image     string  `json:"image"`
}

// PaymentInfo records the payment provider reference for an order.
type PaymentInfo struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

// Order represents a placed order.
type Order struct {
	ID            string       `json:"_id"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	OrderItems    []OrderItem  `json:"orderItems"`
	UserID        string       `json:"user"`
	PaymentInfo   PaymentInfo  `json:"paymentInfo"`
	PaidAt        time.Time    `json:"paidAt"`
	ItemsPrice    float64      `json:"itemsPrice"`
	TaxPrice      float64      `json:"taxPrice"`
	ShippingPrice float64      `json:"shippingPrice"`
	TotalPrice    float64      `json:"totalPrice"`
	OrderStatus   string       `json:"orderStatus"`
	DeliveredAt   *time.Time   `json:"deliveredAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// IsValidOrderStatus checks whether status is a known order status.
func IsValidOrderStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// CanTransitionTo reports whether the order may move to next.
func (o *Order) CanTransitionTo(next string) bool {
	for _, s := range allowedTransitions[o.OrderStatus] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to next, stamping DeliveredAt on delivery.
func (o *Order) TransitionTo(next string, now time.Time) error {
	if o.OrderStatus == OrderStatusDelivered {
		return apperrors.InvalidInput("You have already delivered this order")
	}
	if !IsValidOrderStatus(next) {
		return apperrors.InvalidInput("unknown order status " + next)
	}
	if !o.CanTransitionTo(next) {
		return apperrors.InvalidInput("cannot move order from " + o.OrderStatus + " to " + next)
	}

	o.OrderStatus = next
	if next == OrderStatusDelivered {
		delivered := now
		o.DeliveredAt = &delivered
	}
	return nil
}
