package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/reconcile"
	"taskboard/internal/repository"
	"taskboard/internal/slug"
)

// ViewInvalidator marks rendered board views stale after a successful mutation
// so the next read refetches from the store.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, slugs ...string)
}

// ColumnInput is one entry of a desired column list: an existing column when
// ID is set, a new one when it is nil.
type ColumnInput struct {
	ID   *uuid.UUID
	Name string
}

// BoardService defines the board-level business logic
type BoardService interface {
	ListBoards(ctx context.Context) ([]model.Board, error)
	GetBoard(ctx context.Context, slugOrID string) (*model.Board, error)
	CreateBoard(ctx context.Context, name string, columnNames []string) (*model.Board, error)
	ReplaceColumns(ctx context.Context, boardID uuid.UUID, name string, desired []ColumnInput) (*model.Board, error)
	AddColumns(ctx context.Context, boardID uuid.UUID, names []string) ([]model.Column, error)
	ListColumns(ctx context.Context, boardID uuid.UUID) ([]model.Column, error)
	DeleteBoard(ctx context.Context, boardID uuid.UUID) error
}

type boardService struct {
	db         *gorm.DB
	boardRepo  *repository.BoardRepository
	columnRepo *repository.ColumnRepository
	views      ViewInvalidator
	logger     *zap.Logger
}

func NewBoardService(
	db *gorm.DB,
	boardRepo *repository.BoardRepository,
	columnRepo *repository.ColumnRepository,
	views ViewInvalidator,
	logger *zap.Logger,
) BoardService {
	return &boardService{
		db:         db,
		boardRepo:  boardRepo,
		columnRepo: columnRepo,
		views:      views,
		logger:     logger,
	}
}

func (s *boardService) ListBoards(ctx context.Context) ([]model.Board, error) {
	boards, err := s.boardRepo.GetSummaries(ctx)
	if err != nil {
		return nil, NewInternal("failed to list boards", err)
	}
	return boards, nil
}

func (s *boardService) GetBoard(ctx context.Context, slugOrID string) (*model.Board, error) {
	board, err := s.boardRepo.GetTreeBySlug(ctx, slugOrID)
	if err != nil {
		return nil, NewInternal("failed to load board", err)
	}
	if board == nil {
		return nil, NewNotFound("board not found")
	}
	return board, nil
}

func (s *boardService) CreateBoard(ctx context.Context, name string, columnNames []string) (*model.Board, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidation("board name is required")
	}
	boardSlug := slug.Make(name)
	if boardSlug == "" {
		return nil, NewValidation("board name must contain at least one letter or digit")
	}
	for _, columnName := range columnNames {
		if strings.TrimSpace(columnName) == "" {
			return nil, NewValidation("column name is required")
		}
	}

	other, err := s.boardRepo.FindBySlug(ctx, boardSlug)
	if err != nil {
		return nil, NewInternal("failed to check board name", err)
	}
	if other != nil {
		return nil, NewConflict("a board with this name already exists", boardSlug)
	}

	board := &model.Board{Name: name, Slug: boardSlug}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		for i, columnName := range columnNames {
			column := model.Column{BoardID: board.ID, Name: columnName, Position: i}
			if err := tx.Create(&column).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewInternal("failed to create board", err)
	}

	s.logger.Info("board created",
		zap.String("board_id", board.ID.String()),
		zap.String("slug", board.Slug),
		zap.Int("columns", len(columnNames)),
	)
	return board, nil
}

func (s *boardService) ReplaceColumns(ctx context.Context, boardID uuid.UUID, name string, desired []ColumnInput) (*model.Board, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidation("board name is required")
	}
	if len(desired) == 0 {
		return nil, NewValidation("a board needs at least one column")
	}
	for _, col := range desired {
		if strings.TrimSpace(col.Name) == "" {
			return nil, NewValidation("column name is required")
		}
	}

	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to load board", err)
	}
	if board == nil {
		return nil, NewNotFound("board not found")
	}

	newSlug := slug.Make(name)
	if newSlug == "" {
		return nil, NewValidation("board name must contain at least one letter or digit")
	}
	if newSlug != board.Slug {
		other, err := s.boardRepo.FindBySlug(ctx, newSlug)
		if err != nil {
			return nil, NewInternal("failed to check board name", err)
		}
		if other != nil && other.ID != boardID {
			return nil, NewConflict("a board with this name already exists", newSlug)
		}
	}

	existing, err := s.columnRepo.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to load columns", err)
	}
	existingIDs := make([]uuid.UUID, len(existing))
	for i, col := range existing {
		existingIDs[i] = col.ID
	}

	items := make([]reconcile.Item[string], len(desired))
	for i, col := range desired {
		ref := reconcile.Pending()
		if col.ID != nil {
			ref = reconcile.Existing(*col.ID)
		}
		items[i] = reconcile.Item[string]{Ref: ref, Value: col.Name}
	}
	plan := reconcile.Diff(existingIDs, items)

	oldSlug := board.Slug
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Board{}).Where("id = ?", boardID).
			Updates(map[string]interface{}{"name": name, "slug": newSlug}).Error; err != nil {
			return err
		}
		for _, upd := range plan.Updates {
			if err := tx.Model(&model.Column{}).Where("id = ?", upd.ID).
				Updates(map[string]interface{}{"name": upd.Value, "position": upd.Position}).Error; err != nil {
				return err
			}
		}
		for _, cr := range plan.Creates {
			column := model.Column{BoardID: boardID, Name: cr.Value, Position: cr.Position}
			if err := tx.Create(&column).Error; err != nil {
				return err
			}
		}
		for _, columnID := range plan.Deletes {
			if err := deleteColumnCascade(tx, columnID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("board update failed",
			zap.String("board_id", boardID.String()),
			zap.Error(err),
		)
		return nil, NewInternal("failed to update board", err)
	}

	s.views.Invalidate(ctx, oldSlug, newSlug)
	s.logger.Info("board columns replaced",
		zap.String("board_id", boardID.String()),
		zap.String("slug", newSlug),
		zap.Int("created", len(plan.Creates)),
		zap.Int("updated", len(plan.Updates)),
		zap.Int("deleted", len(plan.Deletes)),
	)

	board.Name = name
	board.Slug = newSlug
	return board, nil
}

func (s *boardService) AddColumns(ctx context.Context, boardID uuid.UUID, names []string) ([]model.Column, error) {
	if len(names) == 0 {
		return nil, NewValidation("at least one column name is required")
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, NewValidation("column name is required")
		}
	}

	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to load board", err)
	}
	if board == nil {
		return nil, NewNotFound("board not found")
	}

	existing, err := s.columnRepo.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to load columns", err)
	}

	// Column names are unique per board, case-insensitively; the batch itself
	// must not repeat a name either.
	taken := make(map[string]bool, len(existing)+len(names))
	for _, col := range existing {
		taken[strings.ToLower(col.Name)] = true
	}
	var collisions []string
	for _, name := range names {
		key := strings.ToLower(name)
		if taken[key] {
			collisions = append(collisions, name)
		}
		taken[key] = true
	}
	if len(collisions) > 0 {
		return nil, NewConflict("column names already in use", strings.Join(collisions, ", "))
	}

	next, err := s.columnRepo.NextPosition(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to determine column position", err)
	}
	positions := reconcile.AppendPositions(next, len(names))

	columns := make([]model.Column, len(names))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, name := range names {
			columns[i] = model.Column{BoardID: boardID, Name: name, Position: positions[i]}
			if err := tx.Create(&columns[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewInternal("failed to add columns", err)
	}

	s.views.Invalidate(ctx, board.Slug)
	s.logger.Info("columns added",
		zap.String("board_id", boardID.String()),
		zap.Int("count", len(columns)),
	)
	return columns, nil
}

func (s *boardService) ListColumns(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to load board", err)
	}
	if board == nil {
		return nil, NewNotFound("board not found")
	}
	columns, err := s.columnRepo.GetByBoardID(ctx, boardID)
	if err != nil {
		return nil, NewInternal("failed to load columns", err)
	}
	return columns, nil
}

func (s *boardService) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return NewInternal("failed to load board", err)
	}
	if board == nil {
		return NewNotFound("board not found")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var columnIDs []uuid.UUID
		if err := tx.Model(&model.Column{}).Where("board_id = ?", boardID).
			Pluck("id", &columnIDs).Error; err != nil {
			return err
		}
		for _, columnID := range columnIDs {
			if err := deleteColumnCascade(tx, columnID); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", boardID).Delete(&model.Board{}).Error
	})
	if err != nil {
		s.logger.Error("board deletion failed",
			zap.String("board_id", boardID.String()),
			zap.Error(err),
		)
		return NewInternal("failed to delete board", err)
	}

	s.views.Invalidate(ctx, board.Slug)
	s.logger.Info("board deleted",
		zap.String("board_id", boardID.String()),
		zap.String("slug", board.Slug),
	)
	return nil
}

// deleteColumnCascade removes a column and everything under it in dependency
// order: subtasks, then tasks, then the column. The cascade is explicit so it
// does not depend on the store enforcing foreign-key cascade.
func deleteColumnCascade(tx *gorm.DB, columnID uuid.UUID) error {
	var taskIDs []uuid.UUID
	if err := tx.Model(&model.Task{}).Where("column_id = ?", columnID).
		Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("column_id = ?", columnID).Delete(&model.Task{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", columnID).Delete(&model.Column{}).Error
}
