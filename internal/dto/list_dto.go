package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateListRequest represents the request to append a list to a board
type CreateListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255" example:"In Progress"`
}

// UpdateListRequest represents the request to rename a list
type UpdateListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255" example:"Review"`
}

// ListResponse represents a list
type ListResponse struct {
	ID        uuid.UUID `json:"id" example:"c56a4180-65aa-42ec-a945-5fd21dec0538"`
	BoardID   uuid.UUID `json:"boardId" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	Title     string    `json:"title" example:"In Progress"`
	Position  int       `json:"position" example:"2"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
}

// ListWithTasksResponse is a list together with its ordered tasks
type ListWithTasksResponse struct {
	ListResponse
	Tasks []TaskResponse `json:"tasks"`
}
