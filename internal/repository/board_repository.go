package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// GetSummaries returns every board without its children, for navigation lists.
func (r *BoardRepository) GetSummaries(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Select("id", "name", "slug").Order("name").Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil, nil to indicate that the board was not found
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) FindBySlug(ctx context.Context, slug string) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

// treeScope preloads the whole board tree with every level ordered by position.
func treeScope(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position") }
	return db.
		Preload("Columns", byPosition).
		Preload("Columns.Tasks", byPosition).
		Preload("Columns.Tasks.Subtasks", byPosition)
}

// GetTreeBySlug loads a full board tree. Lookup goes by slug first and falls
// back to the raw board id, so links minted before slugs existed keep working.
// A slug match always wins over an id match. Returns nil, nil when neither
// resolves.
func (r *BoardRepository) GetTreeBySlug(ctx context.Context, slug string) (*model.Board, error) {
	var board model.Board
	err := treeScope(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&board).Error
	if err == nil {
		return &board, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, parseErr := uuid.Parse(slug)
	if parseErr != nil {
		return nil, nil
	}
	err = treeScope(r.db.WithContext(ctx)).Where("id = ?", id).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}
