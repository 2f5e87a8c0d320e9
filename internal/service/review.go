package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/repository"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// ReviewService maintains product reviews and the rating aggregates derived
// from them.
type ReviewService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	metrics  *Metrics
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ProductRepository, producer *event.Producer, metrics *Metrics, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		producer: producer,
		metrics:  metrics,
		logger:   logger,
	}
}

func parseProductID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidInput("Invalid Product ID")
	}
	return nil
}

// SubmitReview stores the user's review of a product. A user has at most
// one review per product; submitting again overwrites its rating and
// comment. The product is saved without running the product validators.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) error {
	if err := parseProductID(input.ProductID); err != nil {
		return err
	}
	if err := domain.ValidateRating(input.Rating); err != nil {
		return err
	}

	var appended bool
	product, err := updateProduct(ctx, s.repo, s.metrics, input.ProductID, func(p *domain.Product) (bool, error) {
		appended = p.UpsertReview(domain.Review{
			ID:      uuid.New().String(),
			UserID:  input.UserID,
			Name:    input.UserName,
			Rating:  input.Rating,
			Comment: input.Comment,
		})
		return true, nil
	})
	if err != nil {
		return err
	}

	var stored domain.Review
	for _, r := range product.Reviews {
		if r.UserID == input.UserID {
			stored = r
			break
		}
	}

	if err := s.producer.PublishReviewSubmitted(ctx, product, stored); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("product_id", product.ID),
		slog.String("review_id", stored.ID),
		slog.String("user_id", input.UserID),
		slog.Int("rating", input.Rating),
		slog.Bool("appended", appended),
	)

	return nil
}

// ListReviews returns every review of a product in submission order.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if err := parseProductID(productID); err != nil {
		return nil, err
	}

	product, err := getProduct(ctx, s.repo, productID)
	if err != nil {
		return nil, err
	}
	return product.Reviews, nil
}

// DeleteReview removes a review and recomputes the product's aggregates.
// The product is saved with the product validators. Deleting a review that
// does not exist succeeds without writing.
func (s *ReviewService) DeleteReview(ctx context.Context, productID, reviewID string) error {
	if err := parseProductID(productID); err != nil {
		return err
	}

	var removed bool
	product, err := updateProduct(ctx, s.repo, s.metrics, productID, func(p *domain.Product) (bool, error) {
		removed = p.RemoveReview(reviewID)
		if !removed {
			return false, nil
		}
		return true, p.Validate()
	})
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	if err := s.producer.PublishReviewDeleted(ctx, product, reviewID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("product_id", product.ID),
		slog.String("review_id", reviewID),
	)

	return nil
}
