package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/payment"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// PaymentService creates payment intents with the configured provider.
type PaymentService struct {
	provider       payment.Provider
	currency       string
	publishableKey string
	logger         *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(provider payment.Provider, currency, publishableKey string, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		provider:       provider,
		currency:       currency,
		publishableKey: publishableKey,
		logger:         logger,
	}
}

// ProcessPayment creates a payment intent for amount, given in the
// smallest currency unit.
func (s *PaymentService) ProcessPayment(ctx context.Context, userID string, amount float64) (*domain.PaymentIntent, error) {
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return nil, apperrors.InvalidInput("amount must be greater than zero")
	}

	intent, err := s.provider.CreateIntent(ctx, &payment.IntentInput{
		Amount:   int64(math.Round(amount)),
		Currency: s.currency,
		Metadata: map[string]string{"company": "Ecommerce", "user_id": userID},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "payment intent failed",
			slog.String("provider", s.provider.Name()),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.PaymentFailed("payment could not be processed")
	}

	s.logger.InfoContext(ctx, "payment intent created",
		slog.String("provider", s.provider.Name()),
		slog.String("intent_id", intent.ID),
		slog.Int64("amount", intent.Amount),
	)

	return intent, nil
}

// PublishableKey returns the client-side key of the payment provider.
func (s *PaymentService) PublishableKey() string {
	return s.publishableKey
}
