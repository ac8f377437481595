package model

import "time"

// AuditRecord is a persisted document lifecycle event, written by the audit
// worker when the MySQL backend is enabled.
type AuditRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventType  string    `gorm:"size:64;not null;index" json:"event_type"`
	DocumentID string    `gorm:"size:64;not null;index" json:"document_id"`
	Filename   string    `gorm:"size:256" json:"filename"`
	Chunks     int       `json:"chunks"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
