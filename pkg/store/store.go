package store

import (
	"context"
	"time"

	"github.com/gusamyky/ftpfs/pkg/store/models"
)

// UserStore is the account lookup and mutation surface the protocol handlers
// depend on.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (string, error)
	UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error
}

// FileStore persists file metadata for uploaded payloads.
type FileStore interface {
	GetFileByName(ctx context.Context, filename string) (*models.File, error)
	ListFilesByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
	SaveFile(ctx context.Context, file *models.File) error
	DeleteFile(ctx context.Context, filename string) error
}

// HistoryStore is the append-only audit sink plus its read side.
type HistoryStore interface {
	AppendHistory(ctx context.Context, record *models.HistoryRecord) error
	ListHistoryByOwner(ctx context.Context, ownerID string) ([]*models.HistoryRecord, error)
}

// Store combines all persistence surfaces. *GORMStore implements it.
type Store interface {
	UserStore
	FileStore
	HistoryStore

	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, username string) error
	Close() error
}
