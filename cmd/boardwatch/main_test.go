package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/reconciler"
)

func TestStreamURL(t *testing.T) {
	tests := []struct {
		api  string
		want string
	}{
		{"http://localhost:8000/api", "ws://localhost:8000/api/ws"},
		{"https://boards.example.com/api/", "wss://boards.example.com/api/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.api, func(t *testing.T) {
			assert.Equal(t, tt.want, streamURL(tt.api))
		})
	}
}

func TestRender(t *testing.T) {
	listID := uuid.New()
	v := reconciler.NewView(&dto.BoardSnapshotResponse{
		Board: dto.BoardResponse{ID: uuid.New(), Title: "Sprint"},
		Lists: []dto.ListWithTasksResponse{{
			ListResponse: dto.ListResponse{ID: listID, Title: "To Do", Position: 1},
			Tasks: []dto.TaskResponse{
				{ID: uuid.New(), ListID: listID, Title: "Write docs", Position: 1},
				{ID: uuid.New(), ListID: listID, Title: "Ship", Position: 2, AssigneeIDs: []uuid.UUID{uuid.New()}},
			},
		}},
	}, 10)
	v.Activity = []dto.ActivityResponse{{
		ActionType: "TASK_MOVED",
		EntityType: "task",
		CreatedAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	render(&buf, v)
	out := buf.String()

	assert.Contains(t, out, "Sprint\n======")
	assert.Contains(t, out, "[1] To Do (2)")
	assert.Contains(t, out, "  1. Write docs\n")
	assert.Contains(t, out, "  2. Ship  @1")
	assert.Contains(t, out, "10:30:00 TASK_MOVED task")
}

func TestRender_Loading(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, nil)
	assert.Equal(t, "(loading)\n", buf.String())
}
