package models

import (
	"time"

	"vestora/internal/uuid"

	"gorm.io/gorm"
)

// Record holds the id and timestamps shared by every table. Rows embedding
// only Record are deleted for good, matching the hosted record store.
type Record struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}

// Base adds soft deletion for the identity tables, which only live in the
// service database.
type Base struct {
	Record
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
