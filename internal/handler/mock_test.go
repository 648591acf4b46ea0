package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/middleware"
	"taskflow-board-api/internal/response"
)

// MockBoardService is a mock implementation of BoardService
type MockBoardService struct {
	CreateBoardFunc      func(ctx context.Context, actorID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error)
	GetUserBoardsFunc    func(ctx context.Context, actorID uuid.UUID) ([]*dto.BoardResponse, error)
	GetBoardFunc         func(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardResponse, error)
	GetBoardSnapshotFunc func(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardSnapshotResponse, error)
}

func (m *MockBoardService) CreateBoard(ctx context.Context, actorID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
	if m.CreateBoardFunc != nil {
		return m.CreateBoardFunc(ctx, actorID, req)
	}
	return nil, nil
}

func (m *MockBoardService) GetUserBoards(ctx context.Context, actorID uuid.UUID) ([]*dto.BoardResponse, error) {
	if m.GetUserBoardsFunc != nil {
		return m.GetUserBoardsFunc(ctx, actorID)
	}
	return nil, nil
}

func (m *MockBoardService) GetBoard(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardResponse, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx, boardID, actorID)
	}
	return nil, nil
}

func (m *MockBoardService) GetBoardSnapshot(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardSnapshotResponse, error) {
	if m.GetBoardSnapshotFunc != nil {
		return m.GetBoardSnapshotFunc(ctx, boardID, actorID)
	}
	return nil, nil
}

// MockActivityService is a mock implementation of ActivityService
type MockActivityService struct {
	GetActivityFunc func(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ActivityResponse, error)
}

func (m *MockActivityService) GetActivity(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ActivityResponse, error) {
	if m.GetActivityFunc != nil {
		return m.GetActivityFunc(ctx, boardID, actorID)
	}
	return nil, nil
}

// MockListService is a mock implementation of ListService
type MockListService struct {
	CreateListFunc func(ctx context.Context, boardID, actorID uuid.UUID, req *dto.CreateListRequest) (*dto.ListResponse, error)
	UpdateListFunc func(ctx context.Context, listID, actorID uuid.UUID, req *dto.UpdateListRequest) (*dto.ListResponse, error)
	DeleteListFunc func(ctx context.Context, listID, actorID uuid.UUID) error
	GetListsFunc   func(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ListResponse, error)
}

func (m *MockListService) CreateList(ctx context.Context, boardID, actorID uuid.UUID, req *dto.CreateListRequest) (*dto.ListResponse, error) {
	if m.CreateListFunc != nil {
		return m.CreateListFunc(ctx, boardID, actorID, req)
	}
	return nil, nil
}

func (m *MockListService) UpdateList(ctx context.Context, listID, actorID uuid.UUID, req *dto.UpdateListRequest) (*dto.ListResponse, error) {
	if m.UpdateListFunc != nil {
		return m.UpdateListFunc(ctx, listID, actorID, req)
	}
	return nil, nil
}

func (m *MockListService) DeleteList(ctx context.Context, listID, actorID uuid.UUID) error {
	if m.DeleteListFunc != nil {
		return m.DeleteListFunc(ctx, listID, actorID)
	}
	return nil
}

func (m *MockListService) GetLists(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ListResponse, error) {
	if m.GetListsFunc != nil {
		return m.GetListsFunc(ctx, boardID, actorID)
	}
	return nil, nil
}

// MockTaskService is a mock implementation of TaskService
type MockTaskService struct {
	CreateTaskFunc func(ctx context.Context, listID, actorID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTaskFunc    func(ctx context.Context, taskID, actorID uuid.UUID) (*dto.TaskResponse, error)
	GetTasksFunc   func(ctx context.Context, listID, actorID uuid.UUID) ([]*dto.TaskResponse, error)
	UpdateTaskFunc func(ctx context.Context, taskID, actorID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTaskFunc func(ctx context.Context, taskID, actorID uuid.UUID) error
}

func (m *MockTaskService) CreateTask(ctx context.Context, listID, actorID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, listID, actorID, req)
	}
	return nil, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, taskID, actorID uuid.UUID) (*dto.TaskResponse, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, taskID, actorID)
	}
	return nil, nil
}

func (m *MockTaskService) GetTasks(ctx context.Context, listID, actorID uuid.UUID) ([]*dto.TaskResponse, error) {
	if m.GetTasksFunc != nil {
		return m.GetTasksFunc(ctx, listID, actorID)
	}
	return nil, nil
}

func (m *MockTaskService) UpdateTask(ctx context.Context, taskID, actorID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, taskID, actorID, req)
	}
	return nil, nil
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error {
	if m.DeleteTaskFunc != nil {
		return m.DeleteTaskFunc(ctx, taskID, actorID)
	}
	return nil
}

// MockMoveService is a mock implementation of MoveService
type MockMoveService struct {
	MoveTaskFunc func(ctx context.Context, taskID, actorID, targetListID uuid.UUID, requestedPosition int) (*dto.MoveTaskResponse, error)
}

func (m *MockMoveService) MoveTask(ctx context.Context, taskID, actorID, targetListID uuid.UUID, requestedPosition int) (*dto.MoveTaskResponse, error) {
	if m.MoveTaskFunc != nil {
		return m.MoveTaskFunc(ctx, taskID, actorID, targetListID, requestedPosition)
	}
	return nil, nil
}

// MockAssignmentService is a mock implementation of AssignmentService
type MockAssignmentService struct {
	AssignUserFunc   func(ctx context.Context, taskID, actorID, userID uuid.UUID) error
	UnassignUserFunc func(ctx context.Context, taskID, actorID, userID uuid.UUID) error
	GetAssigneesFunc func(ctx context.Context, taskID, actorID uuid.UUID) ([]*dto.AssigneeResponse, error)
}

func (m *MockAssignmentService) AssignUser(ctx context.Context, taskID, actorID, userID uuid.UUID) error {
	if m.AssignUserFunc != nil {
		return m.AssignUserFunc(ctx, taskID, actorID, userID)
	}
	return nil
}

func (m *MockAssignmentService) UnassignUser(ctx context.Context, taskID, actorID, userID uuid.UUID) error {
	if m.UnassignUserFunc != nil {
		return m.UnassignUserFunc(ctx, taskID, actorID, userID)
	}
	return nil
}

func (m *MockAssignmentService) GetAssignees(ctx context.Context, taskID, actorID uuid.UUID) ([]*dto.AssigneeResponse, error) {
	if m.GetAssigneesFunc != nil {
		return m.GetAssigneesFunc(ctx, taskID, actorID)
	}
	return nil, nil
}

// MockMemberService is a mock implementation of MemberService
type MockMemberService struct {
	AddMemberFunc    func(ctx context.Context, boardID, actorID uuid.UUID, req *dto.AddMemberRequest) (*dto.MemberResponse, error)
	RemoveMemberFunc func(ctx context.Context, boardID, actorID, userID uuid.UUID) error
	GetMembersFunc   func(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.MemberResponse, error)
}

func (m *MockMemberService) AddMember(ctx context.Context, boardID, actorID uuid.UUID, req *dto.AddMemberRequest) (*dto.MemberResponse, error) {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, boardID, actorID, req)
	}
	return nil, nil
}

func (m *MockMemberService) RemoveMember(ctx context.Context, boardID, actorID, userID uuid.UUID) error {
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(ctx, boardID, actorID, userID)
	}
	return nil
}

func (m *MockMemberService) GetMembers(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.MemberResponse, error) {
	if m.GetMembersFunc != nil {
		return m.GetMembersFunc(ctx, boardID, actorID)
	}
	return nil, nil
}

// newTestRouter returns a router whose requests are authenticated as userID.
// Pass uuid.Nil to leave requests unauthenticated.
func newTestRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != uuid.Nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserID, userID)
			c.Next()
		})
	}
	return router
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the {"data": ...} envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error response.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}
