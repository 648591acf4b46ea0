package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/position"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

const tracerName = "taskflow-board-api/internal/service"

// MoveService reorders a task within its list or transfers it to another list of the same board
type MoveService interface {
	MoveTask(ctx context.Context, taskID, actorID, targetListID uuid.UUID, requestedPosition int) (*dto.MoveTaskResponse, error)
}

// MoveConfig bounds a single move
type MoveConfig struct {
	Timeout    time.Duration
	MaxRetries int
}

type moveServiceImpl struct {
	store     repository.Store
	publisher realtime.Publisher
	activity  ActivityRecorder
	cfg       MoveConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewMoveService creates a new instance of MoveService
func NewMoveService(
	store repository.Store,
	publisher realtime.Publisher,
	activity ActivityRecorder,
	cfg MoveConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) MoveService {
	return &moveServiceImpl{
		store:     store,
		publisher: publisher,
		activity:  activity,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

type movePlan struct {
	boardID   uuid.UUID
	source    uuid.UUID
	target    uuid.UUID
	final     int
	positions map[uuid.UUID]int
}

// MoveTask places the task at requestedPosition (1-based, clamped) in the target list.
// Both affected lists are reindexed in one transaction; on success exactly one
// taskMoved event is published and a TASK_MOVED activity is recorded.
func (s *moveServiceImpl) MoveTask(ctx context.Context, taskID, actorID, targetListID uuid.UUID, requestedPosition int) (*dto.MoveTaskResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "service.MoveTask")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", taskID.String()),
		attribute.String("list.target_id", targetListID.String()),
		attribute.Int("position.requested", requestedPosition),
	)

	start := time.Now()
	txCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var (
		plan *movePlan
		err  error
	)
	for attempt := 0; ; attempt++ {
		plan, err = s.moveOnce(txCtx, taskID, actorID, targetListID, requestedPosition)
		if err == nil || !repository.IsRetryable(err) || attempt >= s.cfg.MaxRetries || txCtx.Err() != nil {
			break
		}
		if s.metrics != nil {
			s.metrics.IncrementTaskMoveRetry()
		}
		s.logger.Debug("Retrying task move after serialization failure",
			zap.String("task_id", taskID.String()),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	if err != nil {
		appErr := translateMoveError(err)
		if s.metrics != nil {
			s.metrics.RecordTaskMove(strings.ToLower(response.CodeOf(appErr)), time.Since(start))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Error())
		if response.IsCode(appErr, response.ErrCodeAborted) || response.IsCode(appErr, response.ErrCodeUnavailable) {
			s.logger.Warn("Task move aborted",
				zap.String("task_id", taskID.String()),
				zap.String("actor_id", actorID.String()),
				zap.Error(err),
			)
		}
		return nil, appErr
	}

	if s.metrics != nil {
		s.metrics.RecordTaskMove("ok", time.Since(start))
	}
	span.SetAttributes(attribute.Int("position.final", plan.final))

	publishEvent(ctx, s.publisher, s.logger, plan.boardID, domain.EventTaskMoved, dto.TaskMovedEvent{
		TaskID:       taskID,
		SourceListID: plan.source,
		TargetListID: plan.target,
		NewPosition:  plan.final,
	})
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    plan.boardID,
		UserID:     actorID,
		ActionType: domain.ActionTaskMoved,
		EntityType: domain.EntityTask,
		EntityID:   taskID,
		Metadata: map[string]interface{}{
			"fromListId":  plan.source,
			"toListId":    plan.target,
			"newPosition": plan.final,
		},
	})

	return &dto.MoveTaskResponse{
		TaskID:       taskID,
		SourceListID: plan.source,
		TargetListID: plan.target,
		NewPosition:  plan.final,
		Positions:    plan.positions,
	}, nil
}

func (s *moveServiceImpl) moveOnce(ctx context.Context, taskID, actorID, targetListID uuid.UUID, requestedPosition int) (*movePlan, error) {
	var plan *movePlan
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByID(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "Task not found")
		}
		source, err := tx.Lists().FindByID(ctx, task.ListID)
		if err != nil {
			return notFoundOr(err, "List not found")
		}
		// raw storage errors stay unwrapped so the retry loop and
		// translateMoveError can classify them
		if _, err := tx.Members().FindRole(ctx, source.BoardID, actorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewForbiddenError("Not a member of this board", "")
			}
			return err
		}

		target := source
		if targetListID != source.ID {
			target, err = tx.Lists().FindByID(ctx, targetListID)
			if err != nil {
				return notFoundOr(err, "Target list not found")
			}
			if target.BoardID != source.BoardID {
				return response.NewValidationError("Target list belongs to a different board", "")
			}
		}

		if err := tx.Lists().LockForUpdate(ctx, source.ID, target.ID); err != nil {
			return err
		}

		current, err := tx.Tasks().OrderedIDs(ctx, source.ID)
		if err != nil {
			return err
		}
		remaining := position.Without(current, taskID)
		sourcePositions := position.Reindex(remaining)

		base := remaining
		if target.ID != source.ID {
			base, err = tx.Tasks().OrderedIDs(ctx, target.ID)
			if err != nil {
				return err
			}
		}
		placed := position.PlaceAt(base, taskID, position.IndexFromPosition(requestedPosition))
		targetPositions := position.Reindex(placed)

		positions := make(map[uuid.UUID]int, len(sourcePositions)+len(targetPositions))
		if target.ID != source.ID {
			if err := tx.Tasks().SetPositions(ctx, source.ID, remaining, sourcePositions); err != nil {
				return err
			}
			for id, p := range sourcePositions {
				positions[id] = p
			}
		}
		if err := tx.Tasks().SetPositions(ctx, target.ID, placed, targetPositions); err != nil {
			return err
		}
		for id, p := range targetPositions {
			positions[id] = p
		}

		plan = &movePlan{
			boardID:   source.BoardID,
			source:    source.ID,
			target:    target.ID,
			final:     targetPositions[taskID],
			positions: positions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// notFoundOr converts a missing row into NotFound and passes other errors through
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFoundError(message, "")
	}
	return err
}

// translateMoveError maps move failures. Any persistence failure that is not
// an outage surfaces as Aborted since the transaction was rolled back.
func translateMoveError(err error) error {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if repository.IsUnavailable(err) {
		return response.NewUnavailableError("Storage unavailable", err.Error())
	}
	if repository.IsCanceled(err) {
		return response.NewAbortedError("Move cancelled or timed out", err.Error())
	}
	return response.NewAbortedError("Move aborted, please retry", err.Error())
}
