package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	"github.com/utafrali/shopfront/internal/imagestore"
	"github.com/utafrali/shopfront/internal/query"
	"github.com/utafrali/shopfront/internal/repository"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	repo     repository.ProductRepository
	images   *imageUploader
	producer *event.Producer
	metrics  *Metrics
	logger   *slog.Logger
	pageSize int
	now      func() time.Time
}

// NewProductService creates a new product service. pageSize is the number
// of products per listing page.
func NewProductService(
	repo repository.ProductRepository,
	images imagestore.Store,
	producer *event.Producer,
	metrics *Metrics,
	logger *slog.Logger,
	pageSize int,
) *ProductService {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &ProductService{
		repo:     repo,
		images:   &imageUploader{store: images, metrics: metrics, logger: logger},
		producer: producer,
		metrics:  metrics,
		logger:   logger,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	Images      []*imagestore.UploadInput
	CreatedBy   string
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged; a non-empty Images replaces every existing image.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
	Images      []*imagestore.UploadInput
}

// ListResult is one page of a product listing.
type ListResult struct {
	Products      []domain.Product
	ProductsCount int
	ResultPerPage int
}

// PageSize returns the number of products per listing page.
func (s *ProductService) PageSize() int {
	return s.pageSize
}

// CreateProduct validates the product, uploads its images in order and
// stores it. No product is stored unless every image was uploaded, and
// uploaded images are destroyed when the product cannot be stored.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if len(input.Images) == 0 {
		return nil, apperrors.InvalidInput("No images provided")
	}

	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		Reviews:     []domain.Review{},
		CreatedBy:   input.CreatedBy,
		CreatedAt:   s.now().UTC(),
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	images, err := s.images.uploadAll(ctx, imagestore.FolderProducts, input.Images)
	if err != nil {
		return nil, err
	}
	product.Images = images

	if err := s.repo.Create(ctx, product); err != nil {
		s.images.compensate(ctx, images)
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.Int("images", len(images)),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(ctx, s.repo, id)
}

// ListProducts runs a catalog listing for the given query-string
// parameters. ProductsCount counts every match across all pages.
func (s *ProductService) ListProducts(ctx context.Context, params url.Values) (*ListResult, error) {
	countQuery, pageQuery, err := query.Build(params, s.pageSize)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, countQuery)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	products, err := s.repo.Find(ctx, pageQuery)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	return &ListResult{
		Products:      products,
		ProductsCount: count,
		ResultPerPage: s.pageSize,
	}, nil
}

// ListAllProducts returns the whole catalog without pagination.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.Find(ctx, query.Query{})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies input to the product. Replacement images are
// uploaded before the write and the previous images are destroyed only
// after it succeeds.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	if _, err := getProduct(ctx, s.repo, id); err != nil {
		return nil, err
	}

	var uploaded []domain.Image
	if len(input.Images) > 0 {
		images, err := s.images.uploadAll(ctx, imagestore.FolderProducts, input.Images)
		if err != nil {
			return nil, err
		}
		uploaded = images
	}

	var replaced []domain.Image
	product, err := updateProduct(ctx, s.repo, s.metrics, id, func(p *domain.Product) (bool, error) {
		applyProductUpdate(p, input)
		replaced = nil
		if uploaded != nil {
			replaced = p.Images
			p.Images = uploaded
		}
		return true, p.Validate()
	})
	if err != nil {
		if uploaded != nil {
			s.images.compensate(ctx, uploaded)
		}
		return nil, err
	}

	s.images.destroyAll(ctx, replaced)

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.Int("images_replaced", len(replaced)),
	)

	return product, nil
}

func applyProductUpdate(p *domain.Product, input *UpdateProductInput) {
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Stock != nil {
		p.Stock = *input.Stock
	}
}

// DeleteProduct removes a product and then destroys its images.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := getProduct(ctx, s.repo, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("Product", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.images.destroyAll(ctx, product.Images)

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}
