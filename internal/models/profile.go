package models

import "time"

// Profile holds per-user display data and the admin flag consulted by the
// admin gate after the allow-list and identity metadata.
type Profile struct {
	UserID      string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the table name shared with the hosted record store.
func (Profile) TableName() string { return "profiles" }
