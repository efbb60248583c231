package models

import (
	"time"
)

// AuditLog is an append-only record of sensitive reads and writes.
// The core never updates or deletes rows; a retention job prunes old
// entries past the configured horizon.
type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index"`
	Action       string    `json:"action" gorm:"index"`
	ResourceType string    `json:"resource_type"`
	ResourceID   uint      `json:"resource_id"`
	Metadata     string    `json:"metadata" gorm:"type:text"` // JSON blob
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
