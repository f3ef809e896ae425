package services

import (
	"context"
	"errors"
	"strings"

	"kbr-silks-backend/internal/imaging"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/supabase"
)

// StorageService compresses saree images and pushes them to object storage.
type StorageService struct {
	images   ImageStore
	settings settings
}

// UploadedImage is the stored object plus what compression did to it.
type UploadedImage struct {
	Ref   models.ImageRef
	Stats models.ImageStats
}

func NewStorageService(images ImageStore, opts ...Option) *StorageService {
	return &StorageService{images: images, settings: newSettings(opts)}
}

// Prepare runs the compressor. Format problems come back as validation
// errors on the image field.
func (s *StorageService) Prepare(data []byte) (*imaging.Result, error) {
	result, err := imaging.Compress(data, s.settings.imaging...)
	switch {
	case err == nil:
	case errors.Is(err, imaging.ErrUnsupportedFormat), errors.Is(err, imaging.ErrUnreadable):
		return nil, &ValidationError{Fields: map[string]string{"image": err.Error()}}
	default:
		return nil, translate(err)
	}

	if !strings.HasPrefix(result.ContentType, "image/") {
		return nil, &ValidationError{Fields: map[string]string{"image": imaging.ErrUnsupportedFormat.Error() + ": " + result.ContentType}}
	}
	return result, nil
}

// Upload stores a prepared image. The object path is fixed before the first
// attempt so that retries overwrite the same object.
func (s *StorageService) Upload(ctx context.Context, result *imaging.Result) (*UploadedImage, error) {
	path := supabase.NewImagePath(result.ContentType)
	logger := s.settings.logger.With("path", path, "bytes", result.CompressedSize)

	lastStep := -1
	progress := func(pct int) {
		if step := pct / 25; step != lastStep {
			lastStep = step
			logger.DebugContext(ctx, "image upload progress", "percent", pct)
		}
	}

	url, err := call(ctx, s.settings, func(ctx context.Context) (string, error) {
		lastStep = -1
		return s.images.UploadImage(ctx, path, result.Data, result.ContentType, progress)
	})
	if err != nil {
		logger.ErrorContext(ctx, "image upload failed", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "image uploaded",
		"original_kb", result.OriginalKB(), "compressed_kb", result.CompressedKB(), "compressed", result.WasCompressed)

	return &UploadedImage{
		Ref: models.ImageRef{Path: path, URL: url},
		Stats: models.ImageStats{
			OriginalSize:   imaging.FormatFileSize(result.OriginalSize),
			CompressedSize: imaging.FormatFileSize(result.CompressedSize),
			WasCompressed:  result.WasCompressed,
			PreviewURL:     url,
		},
	}, nil
}

// Delete removes an image object. Failures are logged only; a stray object
// costs storage, not correctness.
func (s *StorageService) Delete(ctx context.Context, path string) {
	if path == "" {
		return
	}
	err := run(ctx, s.settings, func(ctx context.Context) error {
		return s.images.DeleteImage(ctx, path)
	})
	if err != nil {
		s.settings.logger.WarnContext(ctx, "failed to delete image", "path", path, "error", err)
	}
}
