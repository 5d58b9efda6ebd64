// Package productfile manages the stored image of a product: the S3 object
// plus the database row describing it.
package productfile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/hash"
)

// ObjectStore is the slice of the S3 client this package needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, payload []byte) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Service struct {
	db     *gorm.DB
	store  ObjectStore
	logger *zap.Logger
}

func NewService(db *gorm.DB, store ObjectStore, logger *zap.Logger) *Service {
	return &Service{db: db, store: store, logger: logger.Named("productfile")}
}

func (s *Service) FindByID(id uint) (*models.ProductFileModel, error) {
	var pf models.ProductFileModel
	if err := s.db.First(&pf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ProductFileNotFound)
		}
		return nil, err
	}
	return &pf, nil
}

// Create uploads payload under a random collision-free key and records the
// file. The original filename is kept for display only.
func (s *Service) Create(ctx context.Context, originalName, mediaType string, payload []byte) (*models.ProductFileModel, error) {
	key := hash.UniqueFileName(originalName)

	url, err := s.store.Upload(ctx, key, mediaType, payload)
	if err != nil {
		return nil, err
	}

	pf := models.ProductFileModel{
		Filename:         key,
		FilenameOriginal: originalName,
		MediaType:        mediaType,
		Filepath:         url,
	}
	if err := s.db.Create(&pf).Error; err != nil {
		// roll back the orphaned object; the row is the source of truth
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned object left behind",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return &pf, nil
}

// Remove deletes the row and then the object. A failed object delete is
// logged, not surfaced: the row is already gone and the purge is repeatable.
func (s *Service) Remove(ctx context.Context, id uint) error {
	pf, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.ProductFileModel{}, id).Error; err != nil {
		return err
	}
	if err := s.store.Delete(ctx, pf.Filename); err != nil {
		s.logger.Warn("object delete failed after row delete",
			zap.String("key", pf.Filename), zap.Error(err))
	}
	return nil
}
