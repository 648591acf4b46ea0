package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/response"
)

func newTestBoardClient(t *testing.T, handler http.HandlerFunc) BoardClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	return NewBoardClient(srv.URL+"/api/", "secret-token", 5*time.Second, zap.NewNop(), m)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response.SuccessResponse{Data: data})
}

func TestFetchSnapshot_Success(t *testing.T) {
	boardID := uuid.New()
	listID := uuid.New()

	client := newTestBoardClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/boards/"+boardID.String()+"/snapshot", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		writeData(w, http.StatusOK, dto.BoardSnapshotResponse{
			Board: dto.BoardResponse{ID: boardID, Title: "Sprint"},
			Lists: []dto.ListWithTasksResponse{{
				ListResponse: dto.ListResponse{ID: listID, BoardID: boardID, Title: "To Do", Position: 1},
				Tasks:        []dto.TaskResponse{{ID: uuid.New(), ListID: listID, Title: "A", Position: 1}},
			}},
		})
	})

	snap, err := client.FetchSnapshot(context.Background(), boardID)

	require.NoError(t, err)
	assert.Equal(t, "Sprint", snap.Board.Title)
	require.Len(t, snap.Lists, 1)
	assert.Equal(t, listID, snap.Lists[0].ID)
	assert.Len(t, snap.Lists[0].Tasks, 1)
}

func TestMoveTask_SendsBody(t *testing.T) {
	taskID := uuid.New()
	targetID := uuid.New()

	client := newTestBoardClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/tasks/"+taskID.String()+"/move", r.URL.Path)

		var req dto.MoveTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.TargetListID)
		require.NotNil(t, req.NewPosition)
		assert.Equal(t, targetID, *req.TargetListID)
		assert.Equal(t, 3, *req.NewPosition)

		writeData(w, http.StatusOK, dto.MoveTaskResponse{TaskID: taskID, TargetListID: targetID, NewPosition: 2})
	})

	res, err := client.MoveTask(context.Background(), taskID, targetID, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, res.NewPosition)
	assert.Equal(t, targetID, res.TargetListID)
}

func TestBoardClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedCode string
	}{
		{"server error code is preserved", http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"Not a board member"}}`, response.ErrCodeForbidden},
		{"aborted move", http.StatusConflict, `{"error":{"code":"ABORTED","message":"Move aborted"}}`, response.ErrCodeAborted},
		{"bare not found", http.StatusNotFound, `not found`, response.ErrCodeNotFound},
		{"bare unavailable", http.StatusServiceUnavailable, ``, response.ErrCodeUnavailable},
		{"bare teapot", http.StatusTeapot, ``, response.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBoardClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.FetchSnapshot(context.Background(), uuid.New())

			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, response.CodeOf(err))
		})
	}
}

func TestBoardClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewBoardClient(url, "", time.Second, zap.NewNop(), nil)
	_, err := client.FetchSnapshot(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Equal(t, response.ErrCodeUnavailable, response.CodeOf(err))
}

func TestBoardClient_MalformedData(t *testing.T) {
	client := newTestBoardClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": "not a snapshot"}`))
	})

	_, err := client.FetchSnapshot(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
