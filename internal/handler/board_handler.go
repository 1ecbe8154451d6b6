package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

// BoardViewCache is the slug-keyed rendered board cache the read path sits
// behind. May be nil, in which case every read hits the store.
type BoardViewCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Set(ctx context.Context, slug string, payload []byte)
}

type BoardHandler struct {
	boardSvc service.BoardService
	views    BoardViewCache
}

func NewBoardHandler(boardSvc service.BoardService, views BoardViewCache) *BoardHandler {
	return &BoardHandler{
		boardSvc: boardSvc,
		views:    views,
	}
}

type CreateBoardRequest struct {
	Name    string             `json:"name" binding:"required"`
	Columns []NewColumnRequest `json:"columns"`
}

type NewColumnRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateBoardRequest struct {
	Name    string              `json:"name" binding:"required"`
	Columns []ColumnItemRequest `json:"columns" binding:"required"`
}

// ColumnItemRequest is one entry of a desired column list; ID is absent for
// columns added in the edit dialog.
type ColumnItemRequest struct {
	ID   *string `json:"id"`
	Name string  `json:"name" binding:"required"`
}

type BoardSummaryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type BoardResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Slug    string           `json:"slug"`
	Columns []ColumnResponse `json:"columns"`
}

type ColumnResponse struct {
	ID       string         `json:"id"`
	BoardID  string         `json:"board_id"`
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Tasks    []TaskResponse `json:"tasks"`
}

func toBoardSummaryResponse(board model.Board) BoardSummaryResponse {
	return BoardSummaryResponse{
		ID:   board.ID.String(),
		Name: board.Name,
		Slug: board.Slug,
	}
}

func toColumnResponse(column model.Column) ColumnResponse {
	tasks := make([]TaskResponse, len(column.Tasks))
	for i, task := range column.Tasks {
		tasks[i] = toTaskResponse(task)
	}
	return ColumnResponse{
		ID:       column.ID.String(),
		BoardID:  column.BoardID.String(),
		Name:     column.Name,
		Position: column.Position,
		Tasks:    tasks,
	}
}

func toBoardResponse(board *model.Board) BoardResponse {
	columns := make([]ColumnResponse, len(board.Columns))
	for i, column := range board.Columns {
		columns[i] = toColumnResponse(column)
	}
	return BoardResponse{
		ID:      board.ID.String(),
		Name:    board.Name,
		Slug:    board.Slug,
		Columns: columns,
	}
}

// GetAll lists board summaries for navigation
func (h *BoardHandler) GetAll(c *gin.Context) {
	boards, err := h.boardSvc.ListBoards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BoardSummaryResponse, len(boards))
	for i, board := range boards {
		response[i] = toBoardSummaryResponse(board)
	}
	c.JSON(http.StatusOK, response)
}

// Create creates a board together with its initial columns
func (h *BoardHandler) Create(c *gin.Context) {
	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	columnNames := make([]string, len(req.Columns))
	for i, column := range req.Columns {
		columnNames[i] = column.Name
	}

	board, err := h.boardSvc.CreateBoard(c.Request.Context(), req.Name, columnNames)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBoardSummaryResponse(*board))
}

// GetBySlug returns the full board tree, serving from the view cache when the
// rendered payload is still fresh.
func (h *BoardHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	if h.views != nil {
		if payload, ok := h.views.Get(ctx, slug); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	board, err := h.boardSvc.GetBoard(ctx, slug)
	if err != nil {
		respondError(c, err)
		return
	}

	response := toBoardResponse(board)
	// Only the canonical slug is cached; legacy-id lookups are served from the
	// store every time since invalidation never sees the legacy key.
	if h.views != nil && slug == board.Slug {
		if payload, err := json.Marshal(response); err == nil {
			h.views.Set(ctx, slug, payload)
		}
	}
	c.JSON(http.StatusOK, response)
}

// Update renames a board and replaces its column set in one operation
func (h *BoardHandler) Update(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	desired := make([]service.ColumnInput, len(req.Columns))
	for i, column := range req.Columns {
		input := service.ColumnInput{Name: column.Name}
		if column.ID != nil {
			id, err := uuid.Parse(*column.ID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
				return
			}
			input.ID = &id
		}
		desired[i] = input
	}

	board, err := h.boardSvc.ReplaceColumns(c.Request.Context(), boardID, req.Name, desired)
	if err != nil {
		respondError(c, err)
		return
	}

	// Re-read through the aggregation path so the response reflects exactly
	// what was persisted.
	tree, err := h.boardSvc.GetBoard(c.Request.Context(), board.Slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBoardResponse(tree))
}

// Delete removes a board and everything on it
func (h *BoardHandler) Delete(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	if err := h.boardSvc.DeleteBoard(c.Request.Context(), boardID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
