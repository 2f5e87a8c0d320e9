package payment

import (
	"context"

	"github.com/utafrali/shopfront/internal/domain"
)

// IntentInput holds the parameters for creating a payment intent.
type IntentInput struct {
	// Amount is in the smallest currency unit.
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Provider defines the interface for payment provider integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateIntent registers a payment intent the client completes with the
	// returned client secret.
	CreateIntent(ctx context.Context, input *IntentInput) (*domain.PaymentIntent, error)
}
