package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/service"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitReviewRequest is the request body for submitting a review.
type SubmitReviewRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

type reviewsResponse struct {
	Success bool            `json:"success"`
	Reviews []domain.Review `json:"reviews"`
}

// SubmitReview handles PUT /api/v1/review. The body is JSON or a form with
// productId, rating and comment.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	req, err := decodeReviewRequest(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.Rating != math.Trunc(req.Rating) {
		httputil.WriteError(w, r, apperrors.InvalidInput("rating must be a whole number between 1 and 5"), h.logger)
		return
	}

	user := userFromContext(r.Context())
	err = h.service.SubmitReview(r.Context(), &service.SubmitReviewInput{
		ProductID: req.ProductID,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    int(req.Rating),
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK)
}

func decodeReviewRequest(w http.ResponseWriter, r *http.Request) (*SubmitReviewRequest, error) {
	var req SubmitReviewRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := validator.DecodeAndValidate(w, r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, apperrors.InvalidInput("invalid request body")
	}

	req.ProductID = r.FormValue("productId")
	req.Comment = r.FormValue("comment")
	rating, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("rating")), 64)
	if err != nil {
		return nil, apperrors.InvalidInput("rating must be a number")
	}
	req.Rating = rating

	if err := validator.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListReviews handles GET /api/v1/reviews?id={productId}.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListReviews(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reviewsResponse{Success: true, Reviews: nonNil(reviews)})
}

// DeleteReview handles DELETE /api/v1/reviews?productId={productId}&id={reviewId}.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.service.DeleteReview(r.Context(), q.Get("productId"), q.Get("id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Review has been deleted successfully")
}
