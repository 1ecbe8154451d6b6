package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("position").Find(&columns).Error
	return columns, err
}

// NextPosition returns the first free position at the end of a board's column
// row: 0 when the board has no columns, max+1 otherwise.
func (r *ColumnRepository) NextPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	var next struct {
		Next int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(position) + 1, 0) as next").
		Where("board_id = ?", boardID).
		Scan(&next).Error

	return next.Next, err
}
