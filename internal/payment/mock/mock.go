package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/payment"
)

// Provider is a mock payment provider that always succeeds.
// It is intended for development and testing purposes.
type Provider struct{}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateIntent returns an intent with a random id and client secret.
func (p *Provider) CreateIntent(_ context.Context, input *payment.IntentInput) (*domain.PaymentIntent, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", input.Amount)
	}

	id := "pi_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return &domain.PaymentIntent{
		ID:           id,
		Amount:       input.Amount,
		Currency:     strings.ToLower(input.Currency),
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
	}, nil
}
