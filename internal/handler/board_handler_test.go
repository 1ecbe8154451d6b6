package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBoardService struct {
	mock.Mock
}

func (m *MockBoardService) ListBoards(ctx context.Context) ([]model.Board, error) {
	args := m.Called(ctx)
	boards := args.Get(0)
	if boards == nil {
		return nil, args.Error(1)
	}
	return boards.([]model.Board), args.Error(1)
}

func (m *MockBoardService) GetBoard(ctx context.Context, slugOrID string) (*model.Board, error) {
	args := m.Called(ctx, slugOrID)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardService) CreateBoard(ctx context.Context, name string, columnNames []string) (*model.Board, error) {
	args := m.Called(ctx, name, columnNames)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardService) ReplaceColumns(ctx context.Context, boardID uuid.UUID, name string, desired []service.ColumnInput) (*model.Board, error) {
	args := m.Called(ctx, boardID, name, desired)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardService) AddColumns(ctx context.Context, boardID uuid.UUID, names []string) ([]model.Column, error) {
	args := m.Called(ctx, boardID, names)
	columns := args.Get(0)
	if columns == nil {
		return nil, args.Error(1)
	}
	return columns.([]model.Column), args.Error(1)
}

func (m *MockBoardService) ListColumns(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	args := m.Called(ctx, boardID)
	columns := args.Get(0)
	if columns == nil {
		return nil, args.Error(1)
	}
	return columns.([]model.Column), args.Error(1)
}

func (m *MockBoardService) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	args := m.Called(ctx, boardID)
	return args.Error(0)
}

// stubViewCache is an in-memory stand-in for the redis-backed board view cache.
type stubViewCache struct {
	payloads map[string][]byte
	setCalls int
}

func newStubViewCache() *stubViewCache {
	return &stubViewCache{payloads: make(map[string][]byte)}
}

func (s *stubViewCache) Get(_ context.Context, slug string) ([]byte, bool) {
	payload, ok := s.payloads[slug]
	return payload, ok
}

func (s *stubViewCache) Set(_ context.Context, slug string, payload []byte) {
	s.payloads[slug] = payload
	s.setCalls++
}

func setupBoardTest(views handler.BoardViewCache) (*gin.Engine, *MockBoardService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockSvc := new(MockBoardService)
	boardHandler := handler.NewBoardHandler(mockSvc, views)

	r.GET("/boards", boardHandler.GetAll)
	r.POST("/boards", boardHandler.Create)
	r.GET("/boards/:slug", boardHandler.GetBySlug)
	r.PUT("/boards/:id", boardHandler.Update)
	r.DELETE("/boards/:id", boardHandler.Delete)

	return r, mockSvc
}

func TestGetBoardBySlug_Success(t *testing.T) {
	// Arrange
	views := newStubViewCache()
	router, mockSvc := setupBoardTest(views)

	boardID := uuid.New()
	columnID := uuid.New()
	board := &model.Board{
		ID:   boardID,
		Name: "Platform Launch",
		Slug: "platform-launch",
		Columns: []model.Column{
			{ID: columnID, BoardID: boardID, Name: "Todo", Position: 0},
		},
	}
	mockSvc.On("GetBoard", mock.Anything, "platform-launch").Return(board, nil)

	req, _ := http.NewRequest("GET", "/boards/platform-launch", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.BoardResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "platform-launch", response.Slug)
	assert.Len(t, response.Columns, 1)
	assert.Equal(t, "Todo", response.Columns[0].Name)

	// The canonical slug read populated the view cache.
	assert.Equal(t, 1, views.setCalls)
	mockSvc.AssertExpectations(t)
}

func TestGetBoardBySlug_CacheHitSkipsService(t *testing.T) {
	// Arrange
	views := newStubViewCache()
	cached, _ := json.Marshal(handler.BoardResponse{Slug: "platform-launch"})
	views.payloads["platform-launch"] = cached
	router, mockSvc := setupBoardTest(views)

	req, _ := http.NewRequest("GET", "/boards/platform-launch", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, string(cached), resp.Body.String())
	mockSvc.AssertNotCalled(t, "GetBoard", mock.Anything, mock.Anything)
}

func TestGetBoardBySlug_LegacyIDNotCached(t *testing.T) {
	// Arrange: a legacy-id lookup resolves but must not be cached under the
	// id key, since invalidation only ever sees slugs.
	views := newStubViewCache()
	router, mockSvc := setupBoardTest(views)

	boardID := uuid.New()
	board := &model.Board{ID: boardID, Name: "Platform Launch", Slug: "platform-launch"}
	mockSvc.On("GetBoard", mock.Anything, boardID.String()).Return(board, nil)

	req, _ := http.NewRequest("GET", "/boards/"+boardID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, views.setCalls)
	mockSvc.AssertExpectations(t)
}

func TestGetBoardBySlug_NotFound(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)
	mockSvc.On("GetBoard", mock.Anything, "missing-board").
		Return(nil, service.NewNotFound("board not found"))

	req, _ := http.NewRequest("GET", "/boards/missing-board", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "board not found")
	mockSvc.AssertExpectations(t)
}

func TestCreateBoard_Success(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)

	board := &model.Board{ID: uuid.New(), Name: "My Board!!", Slug: "my-board"}
	mockSvc.On("CreateBoard", mock.Anything, "My Board!!", []string{"Todo", "Done"}).
		Return(board, nil)

	reqBody := handler.CreateBoardRequest{
		Name: "My Board!!",
		Columns: []handler.NewColumnRequest{
			{Name: "Todo"},
			{Name: "Done"},
		},
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/boards", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.BoardSummaryResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "my-board", response.Slug)
	mockSvc.AssertExpectations(t)
}

func TestCreateBoard_MissingName(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)

	req, _ := http.NewRequest("POST", "/boards", bytes.NewBufferString(`{"columns":[]}`))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "CreateBoard", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBoard_Conflict(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)

	boardID := uuid.New()
	mockSvc.On("ReplaceColumns", mock.Anything, boardID, "Roadmap", mock.Anything).
		Return(nil, service.NewConflict("a board with this name already exists", "roadmap"))

	reqBody := handler.UpdateBoardRequest{
		Name:    "Roadmap",
		Columns: []handler.ColumnItemRequest{{Name: "Todo"}},
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("PUT", "/boards/"+boardID.String(), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "already exists")
	mockSvc.AssertExpectations(t)
}

func TestUpdateBoard_Success(t *testing.T) {
	// Arrange: the handler forwards parsed column ids and re-reads the tree
	// for the response body.
	router, mockSvc := setupBoardTest(nil)

	boardID := uuid.New()
	doingID := uuid.New()
	board := &model.Board{ID: boardID, Name: "Platform Launch", Slug: "platform-launch"}
	tree := &model.Board{
		ID:   boardID,
		Name: "Platform Launch",
		Slug: "platform-launch",
		Columns: []model.Column{
			{ID: doingID, BoardID: boardID, Name: "Doing", Position: 0},
			{ID: uuid.New(), BoardID: boardID, Name: "Review", Position: 1},
		},
	}
	mockSvc.On("ReplaceColumns", mock.Anything, boardID, "Platform Launch", []service.ColumnInput{
		{ID: &doingID, Name: "Doing"},
		{Name: "Review"},
	}).Return(board, nil)
	mockSvc.On("GetBoard", mock.Anything, "platform-launch").Return(tree, nil)

	doingIDStr := doingID.String()
	reqBody := handler.UpdateBoardRequest{
		Name: "Platform Launch",
		Columns: []handler.ColumnItemRequest{
			{ID: &doingIDStr, Name: "Doing"},
			{Name: "Review"},
		},
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("PUT", "/boards/"+boardID.String(), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.BoardResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Columns, 2)
	assert.Equal(t, "Doing", response.Columns[0].Name)
	assert.Equal(t, "Review", response.Columns[1].Name)
	mockSvc.AssertExpectations(t)
}

func TestUpdateBoard_InvalidBoardID(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)

	req, _ := http.NewRequest("PUT", "/boards/not-a-uuid", bytes.NewBufferString(`{"name":"X","columns":[{"name":"Todo"}]}`))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "ReplaceColumns", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteBoard_Success(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)

	boardID := uuid.New()
	mockSvc.On("DeleteBoard", mock.Anything, boardID).Return(nil)

	req, _ := http.NewRequest("DELETE", "/boards/"+boardID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "true")
	mockSvc.AssertExpectations(t)
}

func TestDeleteBoard_NotFound(t *testing.T) {
	// Arrange
	router, mockSvc := setupBoardTest(nil)

	boardID := uuid.New()
	mockSvc.On("DeleteBoard", mock.Anything, boardID).
		Return(service.NewNotFound("board not found"))

	req, _ := http.NewRequest("DELETE", "/boards/"+boardID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	mockSvc.AssertExpectations(t)
}
