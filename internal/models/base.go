package models

import (
	"time"

	googleuuid "github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records. UUIDv7 is
// time-ordered, so primary-key order follows insertion order.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		id, err := googleuuid.NewV7()
		if err != nil {
			// NewV7 only fails if the random source is exhausted.
			id = googleuuid.New()
		}
		b.ID = id.String()
	}
	return nil
}
