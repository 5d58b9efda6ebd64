package models

import (
	"time"

	"gorm.io/gorm"
)

// Base is the base model for all soft-deletable entities. Queries through
// gorm automatically filter rows whose deleted_at is set; Delete writes the
// timestamp instead of removing the row.
type Base struct {
	ID        uint           `json:"id"         gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}
