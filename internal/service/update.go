package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/repository"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// maxUpdateAttempts bounds the read-modify-write retries of a product update.
const maxUpdateAttempts = 5

// productMutation changes p in place. Returning false skips the write.
type productMutation func(p *domain.Product) (bool, error)

// updateProduct reads the product, applies fn and writes it back with a
// version check. On a version mismatch the product is re-read and fn is
// applied again to the fresh copy.
func updateProduct(ctx context.Context, repo repository.ProductRepository, metrics *Metrics, id string, fn productMutation) (*domain.Product, error) {
	for attempt := 1; ; attempt++ {
		product, err := getProduct(ctx, repo, id)
		if err != nil {
			return nil, err
		}

		write, err := fn(product)
		if err != nil {
			return nil, err
		}
		if !write {
			return product, nil
		}

		err = repo.Update(ctx, product)
		if err == nil {
			return product, nil
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Product", id)
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("update product: %w", err)
		}

		metrics.conflict()
		if attempt == maxUpdateAttempts {
			return nil, apperrors.Conflict("product was modified concurrently, please retry")
		}
	}
}

func getProduct(ctx context.Context, repo repository.ProductRepository, id string) (*domain.Product, error) {
	product, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Product", id)
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}
