package store

import (
	"context"
	"time"

	"github.com/gusamyky/ftpfs/pkg/store/models"
)

func (s *GORMStore) AppendHistory(ctx context.Context, record *models.HistoryRecord) error {
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *GORMStore) ListHistoryByOwner(ctx context.Context, ownerID string) ([]*models.HistoryRecord, error) {
	return listByField[models.HistoryRecord](s.db, ctx, "owner_id", ownerID, "occurred_at")
}
