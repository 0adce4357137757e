package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// User represents the user model in the database
type User struct {
	Base
	Email            string            `gorm:"uniqueIndex;not null" json:"email"`
	Password         string            `gorm:"not null" json:"-"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Metadata         datatypes.JSONMap `json:"metadata,omitempty"`
	IsActive         bool              `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string            `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time        `json:"last_login_at,omitempty"`
}

// Identity is the slice of a signed-in user the portfolio core consumes.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]interface{}
}

// Identity returns the user's identity view.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Metadata: map[string]interface{}(u.Metadata)}
}

// HasAdminRole reports whether the identity metadata carries an admin role,
// either as role: "admin" or is_admin: true.
func (i Identity) HasAdminRole() bool {
	if i.Metadata == nil {
		return false
	}
	if role, ok := i.Metadata["role"].(string); ok && strings.EqualFold(role, "admin") {
		return true
	}
	if flag, ok := i.Metadata["is_admin"].(bool); ok && flag {
		return true
	}
	return false
}
