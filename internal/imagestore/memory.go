package imagestore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/utafrali/shopfront/internal/domain"
)

// MemoryStore implements Store in memory. It keeps the uploaded bytes so
// tests can assert on what was stored.
type MemoryStore struct {
	mu      sync.RWMutex
	images  map[string][]byte
	baseURL string
}

// NewMemoryStore creates an empty in-memory image store serving URLs under
// baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		images:  make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Upload stores the image bytes under a generated public id.
func (s *MemoryStore) Upload(_ context.Context, input *UploadInput) (*domain.Image, error) {
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("empty image %q", input.Filename)
	}

	publicID := uuid.NewString()
	if input.Folder != "" {
		publicID = input.Folder + "/" + publicID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[publicID] = append([]byte(nil), input.Data...)

	return &domain.Image{
		PublicID: publicID,
		URL:      fmt.Sprintf("%s/images/%s", s.baseURL, publicID),
	}, nil
}

// Destroy removes the image with the given public id.
func (s *MemoryStore) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, publicID)
	return nil
}

// Has reports whether an image with the given public id is stored.
func (s *MemoryStore) Has(publicID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.images[publicID]
	return ok
}

// Len returns the number of stored images.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
