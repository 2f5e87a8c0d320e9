package repository

import (
	"context"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/query"
)

// ProductRepository defines the interface for product persistence. Reviews
// are stored inside their product and persisted with it.
type ProductRepository interface {
	// Create inserts a new product. The product's Version is set to 1.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Find returns the products matching q in creation order.
	Find(ctx context.Context, q query.Query) ([]domain.Product, error)

	// Count returns the number of products matching q, ignoring pagination.
	Count(ctx context.Context, q query.Query) (int, error)

	// Update replaces the stored product if its version still equals
	// product.Version, then increments product.Version. A version mismatch
	// returns apperrors.ErrConflict.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by its identifier.
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error
}
