package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"
	"github.com/utafrali/shopfront/pkg/logger"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func newTestProducer(w *captureWriter) *Producer {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProducer(pkgkafka.NewProducerWithWriter(w, []string{"localhost:9092"}, l), l)
}

func TestPublishReviewSubmitted(t *testing.T) {
	w := &captureWriter{}
	p := newTestProducer(w)

	product := &domain.Product{ID: "prod-1", Ratings: 4.5, NumOfReviews: 2}
	review := domain.Review{ID: "rev-1", UserID: "user-1", Rating: 5}

	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	require.NoError(t, p.PublishReviewSubmitted(ctx, product, review))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicReviewSubmitted, msg.Topic)
	assert.Equal(t, "prod-1", string(msg.Key))

	var evt pkgkafka.Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, "corr-42", evt.CorrelationID)
	assert.Equal(t, AggregateTypeProduct, evt.AggregateType)

	var data ReviewData
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, "rev-1", data.ReviewID)
	assert.Equal(t, 2, data.NumOfReviews)
	assert.InDelta(t, 4.5, data.Ratings, 1e-9)
}

func TestPublishOrderStatusChanged(t *testing.T) {
	w := &captureWriter{}
	p := newTestProducer(w)

	order := &domain.Order{ID: "ord-1", UserID: "u1", OrderStatus: domain.OrderStatusShipped}
	require.NoError(t, p.PublishOrderStatusChanged(context.Background(), order, domain.OrderStatusProcessing))

	var evt pkgkafka.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &evt))
	var data OrderData
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, domain.OrderStatusShipped, data.Status)
	assert.Equal(t, domain.OrderStatusProcessing, data.PriorStatus)
}

func TestPublish_WriterError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker down")}
	p := newTestProducer(w)

	err := p.PublishProductDeleted(context.Background(), "prod-1")
	assert.ErrorContains(t, err, "broker down")
}

func TestPublish_NilProducerIsNoop(t *testing.T) {
	var p *Producer
	assert.NoError(t, p.PublishProductDeleted(context.Background(), "prod-1"))

	disabled := NewProducer(nil, slog.Default())
	assert.NoError(t, disabled.PublishOrderCreated(context.Background(), &domain.Order{ID: "o"}))
}
