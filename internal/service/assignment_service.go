package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

// AssignmentService defines the interface for task assignee business logic
type AssignmentService interface {
	AssignUser(ctx context.Context, taskID, actorID, userID uuid.UUID) error
	UnassignUser(ctx context.Context, taskID, actorID, userID uuid.UUID) error
	GetAssignees(ctx context.Context, taskID, actorID uuid.UUID) ([]*dto.AssigneeResponse, error)
}

type assignmentServiceImpl struct {
	store     repository.Store
	publisher realtime.Publisher
	activity  ActivityRecorder
	logger    *zap.Logger
}

// NewAssignmentService creates a new instance of AssignmentService
func NewAssignmentService(store repository.Store, publisher realtime.Publisher, activity ActivityRecorder, logger *zap.Logger) AssignmentService {
	return &assignmentServiceImpl{
		store:     store,
		publisher: publisher,
		activity:  activity,
		logger:    logger,
	}
}

// AssignUser assigns a board member to a task. Assigning twice is a no-op.
func (s *assignmentServiceImpl) AssignUser(ctx context.Context, taskID, actorID, userID uuid.UUID) error {
	var (
		task     *domain.Task
		boardID  uuid.UUID
		inserted bool
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if task, boardID, err = loadTask(ctx, tx, taskID, actorID); err != nil {
			return err
		}
		if _, err := tx.Members().FindRole(ctx, boardID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewValidationError("Assignee must be a member of the board", "")
			}
			return err
		}
		inserted, err = tx.Assignments().Create(ctx, &domain.TaskAssignment{
			TaskID:     taskID,
			UserID:     userID,
			AssignedAt: time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return translateError(err, "Failed to assign user")
	}
	if !inserted {
		return nil
	}

	publishEvent(ctx, s.publisher, s.logger, boardID, domain.EventTaskAssigned, dto.TaskAssignmentEvent{
		TaskID: taskID,
		ListID: task.ListID,
		UserID: userID,
	})
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionTaskAssigned,
		EntityType: domain.EntityTask,
		EntityID:   taskID,
		Metadata:   map[string]interface{}{"assigneeId": userID, "title": task.Title},
	})
	return nil
}

// UnassignUser removes an assignee. Removing a user who is not assigned is a no-op.
func (s *assignmentServiceImpl) UnassignUser(ctx context.Context, taskID, actorID, userID uuid.UUID) error {
	var (
		task    *domain.Task
		boardID uuid.UUID
		removed bool
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if task, boardID, err = loadTask(ctx, tx, taskID, actorID); err != nil {
			return err
		}
		removed, err = tx.Assignments().Delete(ctx, taskID, userID)
		return err
	})
	if err != nil {
		return translateError(err, "Failed to unassign user")
	}
	if !removed {
		return nil
	}

	publishEvent(ctx, s.publisher, s.logger, boardID, domain.EventTaskUnassigned, dto.TaskAssignmentEvent{
		TaskID: taskID,
		ListID: task.ListID,
		UserID: userID,
	})
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionTaskUnassigned,
		EntityType: domain.EntityTask,
		EntityID:   taskID,
		Metadata:   map[string]interface{}{"assigneeId": userID, "title": task.Title},
	})
	return nil
}

// GetAssignees returns the task's assignees
func (s *assignmentServiceImpl) GetAssignees(ctx context.Context, taskID, actorID uuid.UUID) ([]*dto.AssigneeResponse, error) {
	if _, _, err := loadTask(ctx, s.store, taskID, actorID); err != nil {
		return nil, err
	}
	assignments, err := s.store.Assignments().FindByTask(ctx, taskID)
	if err != nil {
		return nil, translateError(err, "Failed to fetch assignees")
	}
	responses := make([]*dto.AssigneeResponse, len(assignments))
	for i, a := range assignments {
		responses[i] = &dto.AssigneeResponse{UserID: a.UserID, AssignedAt: a.AssignedAt}
	}
	return responses, nil
}
