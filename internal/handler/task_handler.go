package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type TaskHandler struct {
	taskSvc service.TaskService
}

func NewTaskHandler(taskSvc service.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description *string             `json:"description"`
	Subtasks    []NewSubtaskRequest `json:"subtasks"`
}

type NewSubtaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description *string              `json:"description"`
	ColumnID    string               `json:"column_id" binding:"required,uuid"`
	Subtasks    []SubtaskItemRequest `json:"subtasks"`
}

// SubtaskItemRequest is one entry of a desired subtask list; ID is absent for
// subtasks added in the edit form.
type SubtaskItemRequest struct {
	ID          *string `json:"id"`
	Title       string  `json:"title" binding:"required"`
	IsCompleted bool    `json:"is_completed"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	ColumnID    string            `json:"column_id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Position    int               `json:"position"`
	Subtasks    []SubtaskResponse `json:"subtasks"`
}

type SubtaskResponse struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
	Position    int    `json:"position"`
}

func toTaskResponse(task model.Task) TaskResponse {
	subtasks := make([]SubtaskResponse, len(task.Subtasks))
	for i, subtask := range task.Subtasks {
		subtasks[i] = SubtaskResponse{
			ID:          subtask.ID.String(),
			TaskID:      subtask.TaskID.String(),
			Title:       subtask.Title,
			IsCompleted: subtask.IsCompleted,
			Position:    subtask.Position,
		}
	}
	return TaskResponse{
		ID:          task.ID.String(),
		ColumnID:    task.ColumnID.String(),
		Title:       task.Title,
		Description: task.Description,
		Position:    task.Position,
		Subtasks:    subtasks,
	}
}

// Get returns a task with its subtasks
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskSvc.GetTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// Create adds a task, with its subtasks, at the end of a column
func (h *TaskHandler) Create(c *gin.Context) {
	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtaskTitles := make([]string, len(req.Subtasks))
	for i, subtask := range req.Subtasks {
		subtaskTitles[i] = subtask.Title
	}

	task, err := h.taskSvc.CreateTask(c.Request.Context(), columnID, req.Title, req.Description, subtaskTitles)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(*task))
}

// Update saves a task's fields, its column assignment, and the full desired
// subtask list in one operation
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	columnID, err := uuid.Parse(req.ColumnID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	subtasks := make([]service.SubtaskInput, len(req.Subtasks))
	for i, subtask := range req.Subtasks {
		input := service.SubtaskInput{Title: subtask.Title, IsCompleted: subtask.IsCompleted}
		if subtask.ID != nil {
			id, err := uuid.Parse(*subtask.ID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subtask ID format"})
				return
			}
			input.ID = &id
		}
		subtasks[i] = input
	}

	err = h.taskSvc.UpdateTask(c.Request.Context(), taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ColumnID:    columnID,
		Subtasks:    subtasks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes a task and its subtasks
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	if err := h.taskSvc.DeleteTask(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// BoardColumns lists the columns of the board a task lives on, for the
// move-task picker
func (h *TaskHandler) BoardColumns(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	columns, err := h.taskSvc.BoardColumns(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ColumnSummaryResponse, len(columns))
	for i, column := range columns {
		response[i] = toColumnSummaryResponse(column)
	}
	c.JSON(http.StatusOK, response)
}
