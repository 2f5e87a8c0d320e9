package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/imagestore"
	"github.com/utafrali/shopfront/internal/repository/memory"
)

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// flakyStore wraps a MemoryStore and fails the upload numbered failOn
// (1-based). Zero never fails.
type flakyStore struct {
	*imagestore.MemoryStore

	mu        sync.Mutex
	failOn    int
	uploads   int
	destroyed []string
}

func newFlakyStore(failOn int) *flakyStore {
	return &flakyStore{MemoryStore: imagestore.NewMemoryStore("http://images.test"), failOn: failOn}
}

func (s *flakyStore) Upload(ctx context.Context, input *imagestore.UploadInput) (*domain.Image, error) {
	s.mu.Lock()
	s.uploads++
	n := s.uploads
	s.mu.Unlock()

	if n == s.failOn {
		return nil, errors.New("image host timeout")
	}
	return s.MemoryStore.Upload(ctx, input)
}

func (s *flakyStore) Destroy(ctx context.Context, publicID string) error {
	s.mu.Lock()
	s.destroyed = append(s.destroyed, publicID)
	s.mu.Unlock()
	return s.MemoryStore.Destroy(ctx, publicID)
}

func uploads(n int) []*imagestore.UploadInput {
	in := make([]*imagestore.UploadInput, n)
	for i := range in {
		in[i] = &imagestore.UploadInput{
			Filename:    "img.jpg",
			ContentType: "image/jpeg",
			Data:        []byte{0xff, 0xd8, 0xff, byte(i)},
		}
	}
	return in
}

func seedProduct(t *testing.T, repo *memory.ProductRepository, name string, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: name + " description",
		Price:       price,
		Category:    "Apparel",
		Stock:       10,
		Images:      []domain.Image{{PublicID: "products/" + name, URL: "http://images.test/" + name}},
		Reviews:     []domain.Review{},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func float64Ptr(f float64) *float64 {
	return &f
}
