// Package memory provides an in-process catalog store for development and
// tests. It honors the same version check as the database stores.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/query"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository in memory.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func clone(p domain.Product) domain.Product {
	p.Images = slices.Clone(p.Images)
	p.Reviews = slices.Clone(p.Reviews)
	return p
}

func (r *ProductRepository) indexOf(id string) int {
	return slices.IndexFunc(r.products, func(p domain.Product) bool { return p.ID == id })
}

// Create stores a copy of p with version 1.
func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(p.ID) >= 0 {
		return apperrors.AlreadyExists("product", "id", p.ID)
	}
	p.Version = 1
	r.products = append(r.products, clone(*p))
	return nil
}

// GetByID returns a copy of the stored product.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, apperrors.ErrNotFound
	}
	p := clone(r.products[i])
	return &p, nil
}

// Find returns the products matching q in insertion order.
func (r *ProductRepository) Find(_ context.Context, q query.Query) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := q.Apply(r.products)
	for i := range found {
		found[i] = clone(found[i])
	}
	return found, nil
}

// Count returns the number of products matching q.
func (r *ProductRepository) Count(_ context.Context, q query.Query) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for i := range r.products {
		if q.Matches(&r.products[i]) {
			n++
		}
	}
	return n, nil
}

// Update replaces the stored product when its version matches.
func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.ID)
	if i < 0 {
		return apperrors.ErrNotFound
	}
	if r.products[i].Version != p.Version {
		return apperrors.ErrConflict
	}

	p.Version++
	r.products[i] = clone(*p)
	return nil
}

// Delete removes the product with the given id.
func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return apperrors.ErrNotFound
	}
	r.products = slices.Delete(r.products, i, i+1)
	return nil
}
