package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateBoardRequest represents the request to create a board
// @Description The caller becomes the board's first admin
type CreateBoardRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255" example:"Sprint 12"`
}

// BoardResponse represents a board
type BoardResponse struct {
	ID        uuid.UUID `json:"id" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	Title     string    `json:"title" example:"Sprint 12"`
	CreatedBy uuid.UUID `json:"createdBy" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Role      string    `json:"role,omitempty" example:"admin"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
}

// BoardSnapshotResponse is the full board state used by clients to (re)build their local view
// @Description Lists are in position order and each list's tasks are in position order
type BoardSnapshotResponse struct {
	Board BoardResponse           `json:"board"`
	Lists []ListWithTasksResponse `json:"lists"`
}

// AddMemberRequest represents the request to add a member to a board
type AddMemberRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Role   string    `json:"role,omitempty" binding:"omitempty,oneof=admin member" example:"member"`
}

// MemberResponse represents a board member
type MemberResponse struct {
	BoardID  uuid.UUID `json:"boardId" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	UserID   uuid.UUID `json:"userId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Role     string    `json:"role" example:"member"`
	JoinedAt time.Time `json:"joinedAt" example:"2024-01-15T10:30:00Z"`
}
