package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActionType identifies what kind of mutation an activity entry records
type ActionType string

const (
	ActionBoardCreated   ActionType = "BOARD_CREATED"
	ActionListCreated    ActionType = "LIST_CREATED"
	ActionListUpdated    ActionType = "LIST_UPDATED"
	ActionListDeleted    ActionType = "LIST_DELETED"
	ActionTaskCreated    ActionType = "TASK_CREATED"
	ActionTaskUpdated    ActionType = "TASK_UPDATED"
	ActionTaskDeleted    ActionType = "TASK_DELETED"
	ActionTaskMoved      ActionType = "TASK_MOVED"
	ActionTaskAssigned   ActionType = "TASK_ASSIGNED"
	ActionTaskUnassigned ActionType = "TASK_UNASSIGNED"
	ActionMemberAdded    ActionType = "MEMBER_ADDED"
	ActionMemberRemoved  ActionType = "MEMBER_REMOVED"
)

// EntityType identifies the kind of entity an activity entry refers to
type EntityType string

const (
	EntityBoard  EntityType = "board"
	EntityList   EntityType = "list"
	EntityTask   EntityType = "task"
	EntityMember EntityType = "member"
)

// Activity is an append-only audit entry. Rows are never updated or deleted.
type Activity struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BoardID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_activities_board_created,priority:1" json:"boardId"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null" json:"userId"`
	ActionType ActionType     `gorm:"type:varchar(50);not null" json:"actionType"`
	EntityType EntityType     `gorm:"type:varchar(20);not null" json:"entityType"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null" json:"entityId"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index:idx_activities_board_created,priority:2" json:"createdAt"`
}

// TableName specifies the table name for Activity
func (Activity) TableName() string {
	return "activities"
}

// BeforeCreate assigns an ID when the caller did not provide one
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
