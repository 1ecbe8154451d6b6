package model

import (
	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ColumnID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description *string
	Position    int `gorm:"not null"`

	Column   Column    `gorm:"foreignKey:ColumnID"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID"`
}
