package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) GetByTaskID(ctx context.Context, taskID uuid.UUID) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("position").Find(&subtasks).Error
	return subtasks, err
}
