package models

import "time"

// File is the metadata record for one stored file.
//
// The payload itself lives on disk under the configured files root; this
// record carries ownership so LIST and DOWNLOAD can be scoped to the
// uploading user. Filename is globally unique: a later upload of the same
// name by another user is rejected by the unique index rather than silently
// reassigning ownership.
type File struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string    `gorm:"uniqueIndex;not null;size:255" json:"filename"`
	Size       int64     `gorm:"not null" json:"size"`
	OwnerID    string    `gorm:"index;not null;size:36" json:"owner_id"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// TableName returns the table name for File.
func (File) TableName() string {
	return "files"
}
