package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/shopfront/internal/domain"
	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"
	"github.com/utafrali/shopfront/pkg/logger"
)

// Kafka topic constants for shopfront domain events.
const (
	TopicProductCreated     = "shopfront.product.created"
	TopicProductUpdated     = "shopfront.product.updated"
	TopicProductDeleted     = "shopfront.product.deleted"
	TopicReviewSubmitted    = "shopfront.review.submitted"
	TopicReviewDeleted      = "shopfront.review.deleted"
	TopicOrderCreated       = "shopfront.order.created"
	TopicOrderStatusChanged = "shopfront.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// Source identifies events published by this service.
const Source = "shopfront"

// ProductData is the payload of product events.
type ProductData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// ReviewData is the payload of review events.
type ReviewData struct {
	ProductID    string  `json:"product_id"`
	ReviewID     string  `json:"review_id"`
	UserID       string  `json:"user_id,omitempty"`
	Rating       int     `json:"rating,omitempty"`
	Ratings      float64 `json:"ratings"`
	NumOfReviews int     `json:"num_of_reviews"`
}

// OrderData is the payload of order events.
type OrderData struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Status      string  `json:"status"`
	TotalPrice  float64 `json:"total_price"`
	ItemsCount  int     `json:"items_count"`
	PriorStatus string  `json:"prior_status,omitempty"`
}

// Producer publishes shopfront domain events. A nil Producer, or one built
// without a Kafka producer, drops every event.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func productData(p *domain.Product) ProductData {
	return ProductData{ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price, Stock: p.Stock}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, AggregateTypeProduct, ProductData{ID: productID})
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, product *domain.Product, review domain.Review) error {
	return p.publish(ctx, TopicReviewSubmitted, product.ID, AggregateTypeProduct, ReviewData{
		ProductID:    product.ID,
		ReviewID:     review.ID,
		UserID:       review.UserID,
		Rating:       review.Rating,
		Ratings:      product.Ratings,
		NumOfReviews: product.NumOfReviews,
	})
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, product *domain.Product, reviewID string) error {
	return p.publish(ctx, TopicReviewDeleted, product.ID, AggregateTypeProduct, ReviewData{
		ProductID:    product.ID,
		ReviewID:     reviewID,
		Ratings:      product.Ratings,
		NumOfReviews: product.NumOfReviews,
	})
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, OrderData{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     order.OrderStatus,
		TotalPrice: order.TotalPrice,
		ItemsCount: len(order.OrderItems),
	})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, prior string) error {
	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, OrderData{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.OrderStatus,
		TotalPrice:  order.TotalPrice,
		ItemsCount:  len(order.OrderItems),
		PriorStatus: prior,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
