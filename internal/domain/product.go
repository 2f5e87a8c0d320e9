package domain

import (
	"time"

	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/validator"
)

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Image is a hosted image reference returned by the image store.
type Image struct {
	PublicID string `json:"public_id" bson:"public_id" validate:"required"`
	URL      string `json:"url" bson:"url" validate:"required"`
}

// Review is a single user's rating of a product. Reviews live inside their
// product and are only mutated through it.
type Review struct {
	ID      string `json:"_id" bson:"_id"`
	UserID  string `json:"user" bson:"user"`
	Name    string `json:"name" bson:"name"`
	Rating  int    `json:"rating" bson:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" bson:"comment"`
}

// Product represents a catalog product together with its reviews and the
// aggregates derived from them.
type Product struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name" validate:"required,max=200"`
	Description  string    `json:"description" bson:"description" validate:"required"`
	Price        float64   `json:"price" bson:"price" validate:"gte=0,lt=100000000"`
	Ratings      float64   `json:"ratings" bson:"ratings"`
	Images       []Image   `json:"images" bson:"images" validate:"dive"`
	Category     string    `json:"category" bson:"category" validate:"required"`
	Stock        int       `json:"stock" bson:"stock" validate:"gte=0,lte=9999"`
	NumOfReviews int       `json:"numOfReviews" bson:"numOfReviews"`
	Reviews      []Review  `json:"reviews" bson:"reviews" validate:"dive"`
	CreatedBy    string    `json:"user" bson:"user"`
	Version      int64     `json:"-" bson:"version"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Validate runs the product field validators.
func (p *Product) Validate() error {
	return validator.Validate(p)
}

// ValidateRating reports whether rating is an accepted review rating.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

// UpsertReview stores r as the review of r.UserID. An existing review by the
// same user keeps its id and display name and has its rating and comment
// overwritten; otherwise r is appended. Aggregates are recomputed. It reports
// whether a new review was appended.
func (p *Product) UpsertReview(r Review) bool {
	appended := true
	for i := range p.Reviews {
		if p.Reviews[i].UserID == r.UserID {
			p.Reviews[i].Rating = r.Rating
			p.Reviews[i].Comment = r.Comment
			appended = false
			break
		}
	}
	if appended {
		p.Reviews = append(p.Reviews, r)
	}
	p.RecomputeRatings()
	return appended
}

// RemoveReview drops the review with the given id and recomputes the
// aggregates. It reports whether a review was removed.
func (p *Product) RemoveReview(reviewID string) bool {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			p.Reviews = append(p.Reviews[:i:i], p.Reviews[i+1:]...)
			p.RecomputeRatings()
			return true
		}
	}
	return false
}

// RecomputeRatings derives NumOfReviews and Ratings from Reviews. An empty
// review list yields a rating of 0.
func (p *Product) RecomputeRatings() {
	p.NumOfReviews = len(p.Reviews)
	if p.NumOfReviews == 0 {
		p.Ratings = 0
		return
	}

	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Ratings = float64(sum) / float64(p.NumOfReviews)
}

// DecrementStock removes qty units from stock. Stock never drops below zero.
func (p *Product) DecrementStock(qty int) error {
	if qty <= 0 {
		return apperrors.InvalidInput("quantity must be positive")
	}
	if p.Stock < qty {
		return apperrors.InvalidInput("insufficient stock for product " + p.Name)
	}
	p.Stock -= qty
	return nil
}

// ImagePublicIDs returns the public ids of the product's images.
func (p *Product) ImagePublicIDs() []string {
	ids := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		ids = append(ids, img.PublicID)
	}
	return ids
}
