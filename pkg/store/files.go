package store

import (
	"context"

	"github.com/gusamyky/ftpfs/pkg/store/models"
)

func (s *GORMStore) GetFileByName(ctx context.Context, filename string) (*models.File, error) {
	return getByField[models.File](s.db, ctx, "filename", filename, models.ErrFileNotFound)
}

func (s *GORMStore) ListFilesByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	return listByField[models.File](s.db, ctx, "owner_id", ownerID, "filename")
}

// SaveFile inserts or replaces the metadata record for a filename. Uploading
// over an existing file the caller owns updates size and timestamp in place;
// a filename registered to a different owner is never reassigned.
func (s *GORMStore) SaveFile(ctx context.Context, file *models.File) error {
	var existing models.File
	err := s.db.WithContext(ctx).Where("filename = ?", file.Filename).First(&existing).Error
	if err == nil {
		if existing.OwnerID != file.OwnerID {
			return models.ErrDuplicateFile
		}
		file.ID = existing.ID
		return s.db.WithContext(ctx).Save(file).Error
	}

	if createErr := s.db.WithContext(ctx).Create(file).Error; createErr != nil {
		if isUniqueConstraintError(createErr) {
			return models.ErrDuplicateFile
		}
		return createErr
	}
	return nil
}

func (s *GORMStore) DeleteFile(ctx context.Context, filename string) error {
	return deleteByField[models.File](s.db, ctx, "filename", filename, models.ErrFileNotFound)
}
