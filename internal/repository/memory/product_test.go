package memory

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/query"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

func seed(t *testing.T, repo *ProductRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		p := &domain.Product{ID: fmt.Sprintf("p%02d", i), Name: fmt.Sprintf("Item %02d", i), Price: float64(i * 10)}
		require.NoError(t, repo.Create(context.Background(), p))
	}
}

func TestCreateAndGet_ReturnsCopies(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	p := &domain.Product{ID: "p1", Name: "Shoe", Images: []domain.Image{{PublicID: "a"}}}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	p.Images[0].PublicID = "mutated"

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Images[0].PublicID)

	assert.ErrorIs(t, repo.Create(ctx, &domain.Product{ID: "p1"}), apperrors.ErrAlreadyExists)
}

func TestUpdate_VersionCheck(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Product{ID: "p1", Name: "Shoe"}))

	first, _ := repo.GetByID(ctx, "p1")
	second, _ := repo.GetByID(ctx, "p1")

	first.Name = "Boot"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Name = "Sandal"
	assert.ErrorIs(t, repo.Update(ctx, second), apperrors.ErrConflict)

	got, _ := repo.GetByID(ctx, "p1")
	assert.Equal(t, "Boot", got.Name)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Product{ID: "nope"}), apperrors.ErrNotFound)
}

func TestFindAndCount(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 20)
	ctx := context.Background()

	count, page, err := query.Build(url.Values{"page": {"2"}}, 8)
	require.NoError(t, err)

	found, err := repo.Find(ctx, page)
	require.NoError(t, err)
	require.Len(t, found, 8)
	assert.Equal(t, "p09", found[0].ID)
	assert.Equal(t, "p16", found[7].ID)

	n, err := repo.Count(ctx, count)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestDelete(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 2)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "p01"))
	_, err := repo.GetByID(ctx, "p01")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "p01"), apperrors.ErrNotFound)
}
