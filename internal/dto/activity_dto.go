package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityResponse represents an activity feed entry
type ActivityResponse struct {
	ID         uuid.UUID       `json:"id"`
	BoardID    uuid.UUID       `json:"boardId"`
	UserID     uuid.UUID       `json:"userId"`
	ActionType string          `json:"actionType" example:"TASK_MOVED"`
	EntityType string          `json:"entityType" example:"task"`
	EntityID   uuid.UUID       `json:"entityId"`
	Metadata   json.RawMessage `json:"metadata,omitempty" swaggertype:"object"`
	CreatedAt  time.Time       `json:"createdAt"`
}
