package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the id and audit timestamps shared by mutable entities.
// Rows are soft-deleted so ledger entries keep their references.
type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
