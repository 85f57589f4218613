package models

import "time"

// UploadRecord is the audit row persisted for each stored course material file.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ModuleID  *uint     `gorm:"index" json:"module_id"`
	UserID    *uint     `json:"user_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128" json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `gorm:"size:64" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
