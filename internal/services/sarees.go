package services

import (
	"context"

	"kbr-silks-backend/internal/events"
	"kbr-silks-backend/internal/imaging"
	"kbr-silks-backend/internal/models"
)

type SareeService struct {
	db       SareeStore
	storage  *StorageService
	settings settings
}

// SavedSaree is the stored saree plus the compression outcome when an image
// was uploaded with it.
type SavedSaree struct {
	Saree models.Saree
	Image *models.ImageStats
}

func NewSareeService(db SareeStore, storage *StorageService, opts ...Option) *SareeService {
	return &SareeService{db: db, storage: storage, settings: newSettings(opts)}
}

func (s *SareeService) List(ctx context.Context) ([]models.Saree, error) {
	return cached(ctx, s.settings.cache, SareesKey, SareesTTL, func(ctx context.Context) ([]models.Saree, error) {
		return call(ctx, s.settings, s.db.ListSarees)
	})
}

func (s *SareeService) Get(ctx context.Context, id int64) (*models.Saree, error) {
	if err := requireID(id, "saree"); err != nil {
		return nil, err
	}
	return call(ctx, s.settings, func(ctx context.Context) (*models.Saree, error) {
		return s.db.GetSaree(ctx, id)
	})
}

func (s *SareeService) Browse(ctx context.Context, f CatalogFilter) ([]models.Saree, error) {
	sarees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSarees(sarees, f), nil
}

func (s *SareeService) Featured(ctx context.Context) ([]models.Saree, error) {
	sarees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Featured(sarees), nil
}

func (s *SareeService) Bridal(ctx context.Context) ([]models.Saree, error) {
	sarees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Bridal(sarees), nil
}

// Add validates and compresses before anything reaches the backend. The row
// insert is attempted once; if it fails the uploaded image is removed.
func (s *SareeService) Add(ctx context.Context, in models.SareeInput, image []byte) (*SavedSaree, error) {
	if err := ValidateSaree(in, len(image) > 0 || in.Image != nil); err != nil {
		return nil, err
	}

	var stats *models.ImageStats
	if len(image) > 0 {
		uploaded, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		in.Image = &uploaded.Ref
		stats = &uploaded.Stats
	}

	saree, err := once(ctx, func(ctx context.Context) (*models.Saree, error) {
		return s.db.CreateSaree(ctx, in)
	})
	if err != nil {
		if stats != nil {
			s.storage.Delete(context.WithoutCancel(ctx), in.Image.Path)
		}
		return nil, err
	}

	s.settings.cache.Invalidate(SareesKey)
	s.settings.publish(ctx, events.SareeSavedEvent(events.SareeAdded, *saree))
	s.settings.logger.InfoContext(ctx, "saree added", "saree_id", saree.ID, "name", saree.Name)

	return &SavedSaree{Saree: *saree, Image: stats}, nil
}

// Update keeps the current image unless a new one is supplied; a replaced
// image is deleted from storage after the row is updated.
func (s *SareeService) Update(ctx context.Context, id int64, in models.SareeInput, image []byte) (*SavedSaree, error) {
	if err := requireID(id, "saree"); err != nil {
		return nil, err
	}
	if err := ValidateSaree(in, true); err != nil {
		return nil, err
	}

	var prepared *imaging.Result
	var stats *models.ImageStats
	if len(image) > 0 {
		// Compress before touching the backend so a bad file fails fast.
		result, err := s.storage.Prepare(image)
		if err != nil {
			return nil, err
		}
		prepared = result
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Image == nil {
		in.Image = current.Image
	}
	if prepared != nil {
		uploaded, err := s.storage.Upload(ctx, prepared)
		if err != nil {
			return nil, err
		}
		in.Image = &uploaded.Ref
		stats = &uploaded.Stats
	}

	saree, err := call(ctx, s.settings, func(ctx context.Context) (*models.Saree, error) {
		return s.db.UpdateSaree(ctx, id, in)
	})
	if err != nil {
		if stats != nil {
			s.storage.Delete(context.WithoutCancel(ctx), in.Image.Path)
		}
		return nil, err
	}

	if current.Image != nil && (saree.Image == nil || saree.Image.Path != current.Image.Path) {
		s.storage.Delete(context.WithoutCancel(ctx), current.Image.Path)
	}

	s.settings.cache.Invalidate(SareesKey)
	s.settings.publish(ctx, events.SareeSavedEvent(events.SareeUpdated, *saree))
	s.settings.logger.InfoContext(ctx, "saree updated", "saree_id", saree.ID)

	return &SavedSaree{Saree: *saree, Image: stats}, nil
}

func (s *SareeService) Delete(ctx context.Context, id int64) error {
	if err := requireID(id, "saree"); err != nil {
		return err
	}

	imagePath, err := call(ctx, s.settings, func(ctx context.Context) (string, error) {
		return s.db.DeleteSaree(ctx, id)
	})
	if err != nil {
		return err
	}

	s.storage.Delete(context.WithoutCancel(ctx), imagePath)
	s.settings.cache.Invalidate(SareesKey)
	s.settings.publish(ctx, events.SareeDeletedEvent(id))
	s.settings.logger.InfoContext(ctx, "saree deleted", "saree_id", id)
	return nil
}

func (s *SareeService) upload(ctx context.Context, image []byte) (*UploadedImage, error) {
	result, err := s.storage.Prepare(image)
	if err != nil {
		return nil, err
	}
	return s.storage.Upload(ctx, result)
}
