package models

import (
	"time"

	"gorm.io/gorm"
)

// Base holds the columns shared by every table. DeletedAt enables gorm soft delete.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
