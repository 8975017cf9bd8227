package models

import "time"

// BaseModel provides shared fields for all persistent models.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"-"`
	UpdatedAt time.Time `json:"-"`

	// DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` (Disable softDeletion)
}
