package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// PaymentHandler handles payment HTTP endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  logger,
	}
}

// ProcessPaymentRequest is the request body for creating a payment intent.
// Amount is in the smallest currency unit.
type ProcessPaymentRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type paymentResponse struct {
	Success      bool   `json:"success"`
	ClientSecret string `json:"client_secret"`
}

type apiKeyResponse struct {
	StripeAPIKey string `json:"stripeApiKey"`
}

// ProcessPayment handles POST /api/v1/payment/process.
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req ProcessPaymentRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	intent, err := h.service.ProcessPayment(r.Context(), userFromContext(r.Context()).ID, req.Amount)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, paymentResponse{Success: true, ClientSecret: intent.ClientSecret})
}

// APIKey handles GET /api/v1/stripeapikey.
func (h *PaymentHandler) APIKey(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, apiKeyResponse{StripeAPIKey: h.service.PublishableKey()})
}
