// Package models defines the persistent entities of the server: users,
// file metadata and the append-only operation history.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&File{},
		&HistoryRecord{},
	}
}
