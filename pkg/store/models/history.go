package models

import "time"

// HistoryRecord is one append-only audit event.
//
// Every terminal command outcome produces exactly one record. Operation is a
// machine-parseable tag such as "UPLOAD_OK: f.txt" or
// "DOWNLOAD_FAIL:AccessDenied", never free text; Actor is the username the
// session was authenticated as, or "unknown" before authentication.
type HistoryRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    string    `gorm:"index;size:36" json:"owner_id"`
	Operation  string    `gorm:"not null;size:512" json:"operation"`
	Actor      string    `gorm:"not null;size:255" json:"actor"`
	OccurredAt time.Time `gorm:"autoCreateTime" json:"occurred_at"`
}

// TableName returns the table name for HistoryRecord.
func (HistoryRecord) TableName() string {
	return "history"
}
