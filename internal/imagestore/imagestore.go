// Package imagestore hosts product and avatar images with an external image
// service. The service is treated as an opaque upload/destroy store.
package imagestore

import (
	"context"

	"github.com/utafrali/shopfront/internal/domain"
)

// Folder names used for uploads.
const (
	FolderProducts = "products"
	FolderAvatars  = "avatars"
)

// Store defines the operations of an image host.
type Store interface {
	// Upload stores an image and returns its public id and URL.
	Upload(ctx context.Context, input *UploadInput) (*domain.Image, error)

	// Destroy removes an image by its public id. Destroying an unknown id
	// is not an error.
	Destroy(ctx context.Context, publicID string) error
}

// UploadInput holds the parameters for uploading an image.
type UploadInput struct {
	Folder      string
	Filename    string
	ContentType string
	Data        []byte
}
