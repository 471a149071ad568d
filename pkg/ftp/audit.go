package ftp

import (
	"context"
	"time"

	"github.com/gusamyky/ftpfs/internal/logger"
	"github.com/gusamyky/ftpfs/pkg/store"
	"github.com/gusamyky/ftpfs/pkg/store/models"
)

// Auditor appends one history record per terminal command outcome. Failures
// to persist are logged and swallowed: auditing must never take a session
// down with it.
type Auditor struct {
	history store.HistoryStore
}

// NewAuditor creates an Auditor writing to the given history store.
func NewAuditor(history store.HistoryStore) *Auditor {
	return &Auditor{history: history}
}

// Record appends a single audit event attributed to the given identity.
// Pre-authentication events carry an empty owner and the "unknown" actor.
func (a *Auditor) Record(ctx context.Context, id Identity, tag string) {
	if a == nil || a.history == nil {
		return
	}

	rec := &models.HistoryRecord{
		OwnerID:    id.UserID,
		Operation:  tag,
		Actor:      id.ActorName(),
		OccurredAt: time.Now(),
	}
	if err := a.history.AppendHistory(ctx, rec); err != nil {
		logger.Warn("failed to append audit record",
			logger.KeyUser, id.ActorName(),
			logger.KeyOutcome, tag,
			logger.KeyError, err)
	}
}
