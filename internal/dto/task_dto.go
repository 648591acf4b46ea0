package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request to append a task to a list
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255" example:"Write release notes"`
	Description *string    `json:"description,omitempty" example:"Cover the new move API"`
	DueDate     *time.Time `json:"dueDate,omitempty" example:"2024-02-01T00:00:00Z"`
}

// UpdateTaskRequest represents a partial task update; omitted fields keep their value
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,min=1,max=255" example:"Write release notes v2"`
	Description *string    `json:"description,omitempty" example:"Cover the new move API"`
	DueDate     *time.Time `json:"dueDate,omitempty" example:"2024-02-01T00:00:00Z"`
}

// MoveTaskRequest represents a move within or across lists
// @Description newPosition is 1-based; values below 1 go to the front and values past the end go to the back
type MoveTaskRequest struct {
	TargetListID *uuid.UUID `json:"targetListId" binding:"required" example:"c56a4180-65aa-42ec-a945-5fd21dec0538"`
	NewPosition  *int       `json:"newPosition" binding:"required" example:"1"`
}

// TaskResponse represents a task
type TaskResponse struct {
	ID          uuid.UUID   `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	ListID      uuid.UUID   `json:"listId" example:"c56a4180-65aa-42ec-a945-5fd21dec0538"`
	Title       string      `json:"title" example:"Write release notes"`
	Description *string     `json:"description,omitempty" example:"Cover the new move API"`
	Position    int         `json:"position" example:"1"`
	DueDate     *time.Time  `json:"dueDate,omitempty" example:"2024-02-01T00:00:00Z"`
	CreatedBy   uuid.UUID   `json:"createdBy" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	AssigneeIDs []uuid.UUID `json:"assigneeIds"`
	CreatedAt   time.Time   `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time   `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
}

// MoveTaskResponse carries the final placement and the positions written to both lists
type MoveTaskResponse struct {
	TaskID       uuid.UUID         `json:"taskId"`
	SourceListID uuid.UUID         `json:"sourceListId"`
	TargetListID uuid.UUID         `json:"targetListId"`
	NewPosition  int               `json:"newPosition"`
	Positions    map[uuid.UUID]int `json:"positions"`
}

// AssignUserRequest represents the request to assign a board member to a task
type AssignUserRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
}

// AssigneeResponse represents a task assignee
type AssigneeResponse struct {
	UserID     uuid.UUID `json:"userId"`
	AssignedAt time.Time `json:"assignedAt"`
}
