package models

import (
	"time"
)

const (
	PermissionOwner = "owner"
	PermissionCC    = "cc"
)

// ProjectPermission grants read/write access to a project beyond direct
// ownership. Every project carries exactly one owner row (its creator)
// plus zero or more cc rows.
type ProjectPermission struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProjectID      uint      `json:"project_id" gorm:"index:idx_project_user,unique"`
	UserID         uint      `json:"user_id" gorm:"index:idx_project_user,unique"`
	PermissionType string    `json:"permission_type"` // "owner" or "cc"
	CreatedAt      time.Time `json:"created_at"`
}
