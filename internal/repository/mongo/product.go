// Package mongo stores the product catalog in MongoDB. Products are kept as
// single documents with their images and reviews embedded.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/query"
	"github.com/utafrali/shopfront/pkg/database"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// CollectionProducts is the catalog collection name.
const CollectionProducts = "products"

const dbSystem = "mongodb"

// ProductRepository implements repository.ProductRepository using MongoDB.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(CollectionProducts)}
}

// EnsureIndexes creates the indexes used by listing queries.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

// Create inserts a new product with version 1.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceOperation(ctx, dbSystem, "CreateProduct", CollectionProducts)
	defer func() { end(err) }()

	doc := *p
	doc.Version = 1
	normalize(&doc)

	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	p.Version = 1
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, end := database.TraceOperation(ctx, dbSystem, "GetProduct", CollectionProducts)
	defer func() { end(err) }()

	var p domain.Product
	if err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// Find returns the products matching q ordered by creation time.
func (r *ProductRepository) Find(ctx context.Context, q query.Query) (_ []domain.Product, err error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, fmt.Errorf("build product filter: %w", err)
	}

	ctx, end := database.TraceOperation(ctx, dbSystem, "FindProducts", CollectionProducts)
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	products := []domain.Product{}
	if err = cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range products {
		normalize(&products[i])
	}
	return products, nil
}

// Count returns the number of products matching q, ignoring pagination.
func (r *ProductRepository) Count(ctx context.Context, q query.Query) (_ int, err error) {
	filter, err := toFilter(q)
	if err != nil {
		return 0, fmt.Errorf("build product filter: %w", err)
	}

	ctx, end := database.TraceOperation(ctx, dbSystem, "CountProducts", CollectionProducts)
	defer func() { end(err) }()

	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(n), nil
}

// Update replaces the product document if its version still equals p.Version.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceOperation(ctx, dbSystem, "UpdateProduct", CollectionProducts)
	defer func() { end(err) }()

	next := *p
	next.Version = p.Version + 1
	normalize(&next)

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}, {Key: "version", Value: p.Version}}, next)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: p.ID}})
		if err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if n > 0 {
			return apperrors.ErrConflict
		}
		return apperrors.ErrNotFound
	}

	p.Version = next.Version
	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceOperation(ctx, dbSystem, "DeleteProduct", CollectionProducts)
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func normalize(p *domain.Product) {
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
}
