package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/query"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const ns = "shopfront.products"

func sampleProduct() domain.Product {
	return domain.Product{
		ID:          "0b7c5a9e-2f0d-4c43-9a55-5d7f0c1e8a01",
		Name:        "Trail Shoe",
		Description: "Grippy outsole",
		Price:       4999,
		Images:      []domain.Image{{PublicID: "products/a1", URL: "https://img.example.com/a1.jpg"}},
		Category:    "Footwear",
		Stock:       12,
		Reviews:     []domain.Review{},
		Version:     2,
		CreatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func toDoc(t *testing.T, p domain.Product) bson.D {
	t.Helper()
	raw, err := bson.Marshal(p)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by id", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		p := sampleProduct()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toDoc(mt.T, p)))

		got, err := repo.GetByID(context.Background(), p.ID)
		require.NoError(mt, err)
		assert.Equal(mt, p.Name, got.Name)
		assert.Equal(mt, int64(2), got.Version)
		assert.Equal(mt, p.Images, got.Images)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("find", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		a, b := sampleProduct(), sampleProduct()
		b.ID, b.Name = "1c8d6bae-3a1e-4d54-8b66-6e8a1d2f9b12", "Road Shoe"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toDoc(mt.T, a), toDoc(mt.T, b)))

		got, err := repo.Find(context.Background(), query.Query{Keyword: "shoe", Skip: 8, Limit: 8})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "Road Shoe", got[1].Name)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := sampleProduct()
		p.Version = 0
		require.NoError(mt, repo.Create(context.Background(), &p))
		assert.Equal(mt, int64(1), p.Version)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		p := sampleProduct()
		err := repo.Create(context.Background(), &p)
		assert.ErrorIs(mt, err, apperrors.ErrAlreadyExists)
	})

	mt.Run("update bumps version", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		p := sampleProduct()
		require.NoError(mt, repo.Update(context.Background(), &p))
		assert.Equal(mt, int64(3), p.Version)
	})

	mt.Run("update version mismatch", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		p := sampleProduct()
		err := repo.Update(context.Background(), &p)
		assert.ErrorIs(mt, err, apperrors.ErrConflict)
		assert.Equal(mt, int64(2), p.Version)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), "missing")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}
