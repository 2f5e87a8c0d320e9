package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/query"
	"github.com/utafrali/shopfront/pkg/database"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const productSelectColumns = `id, name, description, price, ratings, images, category, stock, num_of_reviews, reviews, created_by, version, created_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Images and reviews are stored as JSONB documents on the product row.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product with version 1.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	imagesJSON, reviewsJSON, err := marshalDocuments(p)
	if err != nil {
		return err
	}

	stmt := `
		INSERT INTO products (id, name, description, price, ratings, images, category, stock,
		                      num_of_reviews, reviews, created_by, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", stmt)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, stmt,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Ratings,
		imagesJSON,
		p.Category,
		p.Stock,
		p.NumOfReviews,
		reviewsJSON,
		nullableString(p.CreatedBy),
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	p.Version = 1
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	stmt := `SELECT ` + productSelectColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProduct", stmt)
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Find returns the products matching q ordered by creation time.
func (r *ProductRepository) Find(ctx context.Context, q query.Query) (_ []domain.Product, err error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return nil, fmt.Errorf("build product filter: %w", err)
	}

	stmt := `SELECT ` + productSelectColumns + ` FROM products` + where + ` ORDER BY created_at, id`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		stmt += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		stmt += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	ctx, end := database.TraceQuery(ctx, "FindProducts", stmt)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Count returns the number of products matching q, ignoring pagination.
func (r *ProductRepository) Count(ctx context.Context, q query.Query) (_ int, err error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return 0, fmt.Errorf("build product filter: %w", err)
	}

	stmt := `SELECT COUNT(*) FROM products` + where

	ctx, end := database.TraceQuery(ctx, "CountProducts", stmt)
	defer func() { end(err) }()

	var n int
	if err = r.db.QueryRow(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Update writes p if the stored version still equals p.Version.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	imagesJSON, reviewsJSON, err := marshalDocuments(p)
	if err != nil {
		return err
	}

	stmt := `
		UPDATE products
		SET name = $1, description = $2, price = $3, ratings = $4, images = $5, category = $6,
		    stock = $7, num_of_reviews = $8, reviews = $9, version = version + 1, updated_at = NOW()
		WHERE id = $10 AND version = $11`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", stmt)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, stmt,
		p.Name,
		p.Description,
		p.Price,
		p.Ratings,
		imagesJSON,
		p.Category,
		p.Stock,
		p.NumOfReviews,
		reviewsJSON,
		p.ID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		var exists bool
		if err = r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if exists {
			return apperrors.ErrConflict
		}
		return apperrors.ErrNotFound
	}

	p.Version++
	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	stmt := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", stmt)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func marshalDocuments(p *domain.Product) (imagesJSON, reviewsJSON []byte, err error) {
	images := p.Images
	if images == nil {
		images = []domain.Image{}
	}
	reviews := p.Reviews
	if reviews == nil {
		reviews = []domain.Review{}
	}

	if imagesJSON, err = json.Marshal(images); err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	if reviewsJSON, err = json.Marshal(reviews); err != nil {
		return nil, nil, fmt.Errorf("marshal reviews: %w", err)
	}
	return imagesJSON, reviewsJSON, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p           domain.Product
		imagesJSON  []byte
		reviewsJSON []byte
		createdBy   *string
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Ratings,
		&imagesJSON,
		&p.Category,
		&p.Stock,
		&p.NumOfReviews,
		&reviewsJSON,
		&createdBy,
		&p.Version,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if len(reviewsJSON) > 0 {
		if err := json.Unmarshal(reviewsJSON, &p.Reviews); err != nil {
			return nil, fmt.Errorf("unmarshal reviews: %w", err)
		}
	}
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}

	return &p, nil
}
