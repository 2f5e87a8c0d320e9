package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/payment"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return "test"
}

func (m *mockProvider) CreateIntent(ctx context.Context, input *payment.IntentInput) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func TestProcessPayment_Success(t *testing.T) {
	provider := new(mockProvider)
	svc := NewPaymentService(provider, "inr", "pk_test", newTestLogger())
	ctx := context.Background()

	provider.On("CreateIntent", ctx, mock.MatchedBy(func(in *payment.IntentInput) bool {
		return in.Amount == 129900 && in.Currency == "inr" && in.Metadata["user_id"] == "u1"
	})).Return(&domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)

	intent, err := svc.ProcessPayment(ctx, "u1", 129900)
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "pk_test", svc.PublishableKey())
	provider.AssertExpectations(t)
}

func TestProcessPayment_InvalidAmount(t *testing.T) {
	provider := new(mockProvider)
	svc := NewPaymentService(provider, "inr", "", newTestLogger())

	_, err := svc.ProcessPayment(context.Background(), "u1", 0)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	provider.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestProcessPayment_ProviderFailure(t *testing.T) {
	provider := new(mockProvider)
	svc := NewPaymentService(provider, "inr", "", newTestLogger())
	ctx := context.Background()

	provider.On("CreateIntent", ctx, mock.Anything).Return(nil, errors.New("card declined"))

	_, err := svc.ProcessPayment(ctx, "u1", 500)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}
