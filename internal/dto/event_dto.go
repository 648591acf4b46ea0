package dto

import "github.com/google/uuid"

// Event payloads. Each one identifies everything it touches so subscribers can
// apply it without having seen any earlier event.

// TaskDeletedEvent is the payload of taskDeleted
type TaskDeletedEvent struct {
	TaskID uuid.UUID `json:"taskId"`
	ListID uuid.UUID `json:"listId"`
}

// TaskMovedEvent is the payload of taskMoved
type TaskMovedEvent struct {
	TaskID       uuid.UUID `json:"taskId"`
	SourceListID uuid.UUID `json:"sourceListId"`
	TargetListID uuid.UUID `json:"targetListId"`
	NewPosition  int       `json:"newPosition"`
}

// ListDeletedEvent is the payload of listDeleted
type ListDeletedEvent struct {
	ListID uuid.UUID `json:"listId"`
}

// TaskAssignmentEvent is the payload of taskAssigned and taskUnassigned
type TaskAssignmentEvent struct {
	TaskID uuid.UUID `json:"taskId"`
	ListID uuid.UUID `json:"listId"`
	UserID uuid.UUID `json:"userId"`
}
