package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"

	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User represents authenticated users with role-based access control.
// Regular users see only projects they own or hold a CC grant on; admins
// and super admins see everything.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UUID         string     `json:"uuid" gorm:"uniqueIndex"`
	Email        string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash string     `json:"-"` // Never serialize password hash
	Name         string     `json:"name"`
	Role         string     `json:"role" gorm:"default:'user'"` // "user", "admin", "super_admin"
	Status       string     `json:"status" gorm:"default:'active'"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user has an administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
