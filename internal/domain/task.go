package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work owned by exactly one list at a time
type Task struct {
	BaseModel
	ListID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_tasks_list_position,priority:1" json:"listId"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Description *string          `gorm:"type:text" json:"description,omitempty"`
	Position    int              `gorm:"not null;index:idx_tasks_list_position,priority:2" json:"position"`
	DueDate     *time.Time       `gorm:"type:timestamp" json:"dueDate,omitempty"`
	CreatedBy   uuid.UUID        `gorm:"type:uuid;not null;index:idx_tasks_created_by" json:"createdBy"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignment links a board member to a task
type TaskAssignment struct {
	TaskID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"taskId"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_task_assignments_user_id" json:"userId"`
	AssignedAt time.Time `gorm:"not null" json:"assignedAt"`
}

// TableName specifies the table name for TaskAssignment
func (TaskAssignment) TableName() string {
	return "task_assignments"
}
