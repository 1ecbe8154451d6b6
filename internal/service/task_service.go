package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/reconcile"
	"taskboard/internal/repository"
)

// SubtaskInput is one entry of a desired subtask list: an existing subtask
// when ID is set, a new one when it is nil.
type SubtaskInput struct {
	ID          *uuid.UUID
	Title       string
	IsCompleted bool
}

// UpdateTaskInput carries the full desired state of a task: its own fields,
// the column it should live in, and the complete subtask list.
type UpdateTaskInput struct {
	Title       string
	Description *string
	ColumnID    uuid.UUID
	Subtasks    []SubtaskInput
}

// TaskService defines the task-level business logic
type TaskService interface {
	GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error)
	CreateTask(ctx context.Context, columnID uuid.UUID, title string, description *string, subtaskTitles []string) (*model.Task, error)
	UpdateTask(ctx context.Context, taskID uuid.UUID, in UpdateTaskInput) error
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
	BoardColumns(ctx context.Context, taskID uuid.UUID) ([]model.Column, error)
}

type subtaskFields struct {
	Title       string
	IsCompleted bool
}

type taskService struct {
	db          *gorm.DB
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
	columnRepo  *repository.ColumnRepository
	boardRepo   *repository.BoardRepository
	views       ViewInvalidator
	logger      *zap.Logger
}

func NewTaskService(
	db *gorm.DB,
	taskRepo *repository.TaskRepository,
	subtaskRepo *repository.SubtaskRepository,
	columnRepo *repository.ColumnRepository,
	boardRepo *repository.BoardRepository,
	views ViewInvalidator,
	logger *zap.Logger,
) TaskService {
	return &taskService{
		db:          db,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		columnRepo:  columnRepo,
		boardRepo:   boardRepo,
		views:       views,
		logger:      logger,
	}
}

// GetTask loads a task with its ordered subtasks, for the edit dialog.
func (s *taskService) GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.GetWithSubtasks(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, NewNotFound("task not found")
		}
		return nil, NewInternal("failed to load task", err)
	}
	return task, nil
}

func (s *taskService) CreateTask(ctx context.Context, columnID uuid.UUID, title string, description *string, subtaskTitles []string) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewValidation("task title is required")
	}
	for _, subtaskTitle := range subtaskTitles {
		if strings.TrimSpace(subtaskTitle) == "" {
			return nil, NewValidation("subtask title is required")
		}
	}

	column, err := s.columnRepo.GetByID(ctx, columnID)
	if err != nil {
		return nil, NewInternal("failed to load column", err)
	}
	if column == nil {
		return nil, NewNotFound("column not found")
	}

	next, err := s.taskRepo.NextPosition(ctx, columnID)
	if err != nil {
		return nil, NewInternal("failed to determine task position", err)
	}

	task := &model.Task{
		ColumnID:    columnID,
		Title:       title,
		Description: description,
		Position:    next,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		// New subtasks always start unchecked.
		for i, subtaskTitle := range subtaskTitles {
			subtask := model.Subtask{TaskID: task.ID, Title: subtaskTitle, Position: i}
			if err := tx.Create(&subtask).Error; err != nil {
				return err
			}
			task.Subtasks = append(task.Subtasks, subtask)
		}
		return nil
	})
	if err != nil {
		return nil, NewInternal("failed to create task", err)
	}

	s.invalidateBoardOf(ctx, column)
	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("column_id", columnID.String()),
		zap.Int("position", task.Position),
		zap.Int("subtasks", len(subtaskTitles)),
	)
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, taskID uuid.UUID, in UpdateTaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidation("task title is required")
	}
	if in.ColumnID == uuid.Nil {
		return NewValidation("column is required")
	}
	for _, subtask := range in.Subtasks {
		if strings.TrimSpace(subtask.Title) == "" {
			return NewValidation("subtask title is required")
		}
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return NewNotFound("task not found")
		}
		return NewInternal("failed to load task", err)
	}

	oldColumn, err := s.columnRepo.GetByID(ctx, task.ColumnID)
	if err != nil {
		return NewInternal("failed to load column", err)
	}

	// Moving to another column appends the task at that column's end so
	// sibling positions stay unique.
	moved := in.ColumnID != task.ColumnID
	newPosition := task.Position
	var newColumn *model.Column
	if moved {
		newColumn, err = s.columnRepo.GetByID(ctx, in.ColumnID)
		if err != nil {
			return NewInternal("failed to load column", err)
		}
		if newColumn == nil {
			return NewNotFound("column not found")
		}
		newPosition, err = s.taskRepo.NextPosition(ctx, in.ColumnID)
		if err != nil {
			return NewInternal("failed to determine task position", err)
		}
	}

	existing, err := s.subtaskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return NewInternal("failed to load subtasks", err)
	}
	existingIDs := make([]uuid.UUID, len(existing))
	for i, subtask := range existing {
		existingIDs[i] = subtask.ID
	}

	items := make([]reconcile.Item[subtaskFields], len(in.Subtasks))
	for i, subtask := range in.Subtasks {
		ref := reconcile.Pending()
		if subtask.ID != nil {
			ref = reconcile.Existing(*subtask.ID)
		}
		items[i] = reconcile.Item[subtaskFields]{
			Ref:   ref,
			Value: subtaskFields{Title: subtask.Title, IsCompleted: subtask.IsCompleted},
		}
	}
	plan := reconcile.Diff(existingIDs, items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"title":       in.Title,
				"description": in.Description,
				"column_id":   in.ColumnID,
				"position":    newPosition,
			}).Error; err != nil {
			return err
		}
		for _, upd := range plan.Updates {
			if err := tx.Model(&model.Subtask{}).Where("id = ?", upd.ID).
				Updates(map[string]interface{}{
					"title":        upd.Value.Title,
					"is_completed": upd.Value.IsCompleted,
					"position":     upd.Position,
				}).Error; err != nil {
				return err
			}
		}
		for _, cr := range plan.Creates {
			subtask := model.Subtask{
				TaskID:      taskID,
				Title:       cr.Value.Title,
				IsCompleted: cr.Value.IsCompleted,
				Position:    cr.Position,
			}
			if err := tx.Create(&subtask).Error; err != nil {
				return err
			}
		}
		if len(plan.Deletes) > 0 {
			if err := tx.Where("id IN ?", plan.Deletes).Delete(&model.Subtask{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("task update failed",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
		return NewInternal("failed to update task", err)
	}

	s.invalidateBoardOf(ctx, oldColumn)
	if moved && newColumn != nil && (oldColumn == nil || newColumn.BoardID != oldColumn.BoardID) {
		s.invalidateBoardOf(ctx, newColumn)
	}
	s.logger.Info("task updated",
		zap.String("task_id", taskID.String()),
		zap.Bool("moved", moved),
		zap.Int("created", len(plan.Creates)),
		zap.Int("updated", len(plan.Updates)),
		zap.Int("deleted", len(plan.Deletes)),
	)
	return nil
}

func (s *taskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return NewNotFound("task not found")
		}
		return NewInternal("failed to load task", err)
	}

	column, err := s.columnRepo.GetByID(ctx, task.ColumnID)
	if err != nil {
		return NewInternal("failed to load column", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.Subtask{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", taskID).Delete(&model.Task{}).Error
	})
	if err != nil {
		s.logger.Error("task deletion failed",
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
		return NewInternal("failed to delete task", err)
	}

	s.invalidateBoardOf(ctx, column)
	s.logger.Info("task deleted", zap.String("task_id", taskID.String()))
	return nil
}

func (s *taskService) BoardColumns(ctx context.Context, taskID uuid.UUID) ([]model.Column, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, NewNotFound("task not found")
		}
		return nil, NewInternal("failed to load task", err)
	}

	column, err := s.columnRepo.GetByID(ctx, task.ColumnID)
	if err != nil {
		return nil, NewInternal("failed to load column", err)
	}
	if column == nil {
		return nil, NewNotFound("column not found")
	}

	columns, err := s.columnRepo.GetByBoardID(ctx, column.BoardID)
	if err != nil {
		return nil, NewInternal("failed to load columns", err)
	}
	return columns, nil
}

func (s *taskService) invalidateBoardOf(ctx context.Context, column *model.Column) {
	if column == nil {
		return
	}
	board, err := s.boardRepo.GetByID(ctx, column.BoardID)
	if err != nil || board == nil {
		return
	}
	s.views.Invalidate(ctx, board.Slug)
}
