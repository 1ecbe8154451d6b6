package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type ColumnHandler struct {
	boardSvc service.BoardService
}

func NewColumnHandler(boardSvc service.BoardService) *ColumnHandler {
	return &ColumnHandler{boardSvc: boardSvc}
}

type AddColumnsRequest struct {
	Columns []NewColumnRequest `json:"columns" binding:"required"`
}

// ColumnSummaryResponse is a column without its tasks, for pickers and the
// add-column flow.
type ColumnSummaryResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func toColumnSummaryResponse(column model.Column) ColumnSummaryResponse {
	return ColumnSummaryResponse{
		ID:       column.ID.String(),
		BoardID:  column.BoardID.String(),
		Name:     column.Name,
		Position: column.Position,
	}
}

// Add appends new columns to the end of a board
func (h *ColumnHandler) Add(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	var req AddColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	names := make([]string, len(req.Columns))
	for i, column := range req.Columns {
		names[i] = column.Name
	}

	columns, err := h.boardSvc.AddColumns(c.Request.Context(), boardID, names)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ColumnSummaryResponse, len(columns))
	for i, column := range columns {
		response[i] = toColumnSummaryResponse(column)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Columns added successfully", "columns": response})
}

// GetAll lists a board's columns without their tasks. The route shares the
// :slug segment with the board tree route, but this endpoint takes the raw
// board id.
func (h *ColumnHandler) GetAll(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	columns, err := h.boardSvc.ListColumns(c.Request.Context(), boardID)
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
