package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/imagestore"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// imageUploader uploads request images one at a time and undoes partial
// batches.
type imageUploader struct {
	store   imagestore.Store
	metrics *Metrics
	logger  *slog.Logger
}

// uploadAll uploads every input to folder in order. If an upload fails, the
// images already uploaded by this call are destroyed before the error is
// returned.
func (u *imageUploader) uploadAll(ctx context.Context, folder string, inputs []*imagestore.UploadInput) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(inputs))
	for i, in := range inputs {
		upload := *in
		upload.Folder = folder

		img, err := u.store.Upload(ctx, &upload)
		if err != nil {
			u.metrics.upload(uploadResultFailure, 1)
			u.logger.ErrorContext(ctx, "image upload failed",
				slog.Int("index", i),
				slog.Int("uploaded", len(images)),
				slog.String("error", err.Error()),
			)
			u.compensate(ctx, images)
			return nil, apperrors.Upstream("Error uploading image", err)
		}

		u.metrics.upload(uploadResultSuccess, 1)
		images = append(images, *img)
	}
	return images, nil
}

// compensate destroys images uploaded by a request that did not commit.
func (u *imageUploader) compensate(ctx context.Context, images []domain.Image) {
	u.destroyAll(ctx, images)
	u.metrics.upload(uploadResultCompensated, len(images))
}

// destroyAll removes images on a best-effort basis. Failures are logged and
// leave the remote image orphaned.
func (u *imageUploader) destroyAll(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if err := u.store.Destroy(ctx, img.PublicID); err != nil {
			u.logger.ErrorContext(ctx, "failed to destroy image",
				slog.String("public_id", img.PublicID),
				slog.String("error", err.Error()),
			)
		}
	}
}
