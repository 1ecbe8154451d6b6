package model

import (
	"github.com/google/uuid"
)

type Subtask struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	IsCompleted bool      `gorm:"not null;default:false"`
	Position    int       `gorm:"not null"`

	Task Task `gorm:"foreignKey:TaskID"`
}
