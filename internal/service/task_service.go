package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

// TaskService defines the interface for task business logic
type TaskService interface {
	CreateTask(ctx context.Context, listID, actorID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, taskID, actorID uuid.UUID) (*dto.TaskResponse, error)
	GetTasks(ctx context.Context, listID, actorID uuid.UUID) ([]*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, taskID, actorID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error
}

type taskServiceImpl struct {
	store     repository.Store
	publisher realtime.Publisher
	activity  ActivityRecorder
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(store repository.Store, publisher realtime.Publisher, activity ActivityRecorder, m *metrics.Metrics, logger *zap.Logger) TaskService {
	return &taskServiceImpl{
		store:     store,
		publisher: publisher,
		activity:  activity,
		metrics:   m,
		logger:    logger,
	}
}

// CreateTask appends a task after the list's last one
func (s *taskServiceImpl) CreateTask(ctx context.Context, listID, actorID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewValidationError("Task title is required", "")
	}

	task := &domain.Task{
		ListID:      listID,
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   actorID,
	}
	var list *domain.List
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if list, err = loadList(ctx, tx, listID, actorID); err != nil {
			return err
		}
		next, err := tx.Tasks().NextPosition(ctx, listID)
		if err != nil {
			return err
		}
		task.Position = next
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, translateError(err, "Failed to create task")
	}

	if s.metrics != nil {
		s.metrics.IncrementTaskCreated()
	}
	resp := toTaskResponse(task, nil)
	publishEvent(ctx, s.publisher, s.logger, list.BoardID, domain.EventTaskCreated, resp)
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    list.BoardID,
		UserID:     actorID,
		ActionType: domain.ActionTaskCreated,
		EntityType: domain.EntityTask,
		EntityID:   task.ID,
		Metadata:   map[string]interface{}{"title": task.Title, "listId": listID},
	})
	return resp, nil
}

// GetTask returns one task with its assignees
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID, actorID uuid.UUID) (*dto.TaskResponse, error) {
	task, _, err := loadTask(ctx, s.store, taskID, actorID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.Assignments().FindByTask(ctx, taskID)
	if err != nil {
		return nil, translateError(err, "Failed to fetch assignees")
	}
	return toTaskResponse(task, assigneesByTask(assignments)[taskID]), nil
}

// GetTasks returns the list's tasks in display order
func (s *taskServiceImpl) GetTasks(ctx context.Context, listID, actorID uuid.UUID) ([]*dto.TaskResponse, error) {
	if _, err := loadList(ctx, s.store, listID, actorID); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().FindByList(ctx, listID)
	if err != nil {
		return nil, translateError(err, "Failed to fetch tasks")
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	assignments, err := s.store.Assignments().FindByTasks(ctx, ids)
	if err != nil {
		return nil, translateError(err, "Failed to fetch assignees")
	}
	assignees := assigneesByTask(assignments)

	responses := make([]*dto.TaskResponse, len(tasks))
	for i, t := range tasks {
		responses[i] = toTaskResponse(t, assignees[t.ID])
	}
	return responses, nil
}

// UpdateTask applies the non-nil fields of req and keeps the rest
func (s *taskServiceImpl) UpdateTask(ctx context.Context, taskID, actorID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, response.NewValidationError("Task title cannot be empty", "")
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	var (
		task      *domain.Task
		boardID   uuid.UUID
		assignees []uuid.UUID
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if task, boardID, err = loadTask(ctx, tx, taskID, actorID); err != nil {
			return err
		}
		if len(fields) > 0 {
			fields["updated_at"] = time.Now().UTC()
			if err := tx.Tasks().Update(ctx, taskID, fields); err != nil {
				return err
			}
			if task, err = tx.Tasks().FindByID(ctx, taskID); err != nil {
				return err
			}
		}
		assignments, err := tx.Assignments().FindByTask(ctx, taskID)
		if err != nil {
			return err
		}
		assignees = assigneesByTask(assignments)[taskID]
		return nil
	})
	if err != nil {
		return nil, translateError(err, "Failed to update task")
	}

	resp := toTaskResponse(task, assignees)
	if len(fields) == 0 {
		return resp, nil
	}

	changed := make([]string, 0, len(fields))
	for k := range fields {
		if k != "updated_at" {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	publishEvent(ctx, s.publisher, s.logger, boardID, domain.EventTaskUpdated, resp)
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionTaskUpdated,
		EntityType: domain.EntityTask,
		EntityID:   taskID,
		Metadata:   map[string]interface{}{"title": task.Title, "fields": changed},
	})
	return resp, nil
}

// DeleteTask removes a task. Siblings keep their positions until the next move reindexes the list.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error {
	var (
		task    *domain.Task
		boardID uuid.UUID
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if task, boardID, err = loadTask(ctx, tx, taskID, actorID); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, taskID)
	})
	if err != nil {
		return translateError(err, "Failed to delete task")
	}

	publishEvent(ctx, s.publisher, s.logger, boardID, domain.EventTaskDeleted, dto.TaskDeletedEvent{
		TaskID: taskID,
		ListID: task.ListID,
	})
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionTaskDeleted,
		EntityType: domain.EntityTask,
		EntityID:   taskID,
		Metadata:   map[string]interface{}{"title": task.Title, "listId": task.ListID},
	})
	return nil
}

// loadTask fetches a task, resolves its board and checks the actor belongs to it
func loadTask(ctx context.Context, store repository.Store, taskID, actorID uuid.UUID) (*domain.Task, uuid.UUID, error) {
	task, err := store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		return nil, uuid.Nil, translateError(err, "Task not found")
	}
	list, err := loadList(ctx, store, task.ListID, actorID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return task, list.BoardID, nil
}
