package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
)

// ActivityEntry describes one fact to append to a board's activity log
type ActivityEntry struct {
	BoardID    uuid.UUID
	UserID     uuid.UUID
	ActionType domain.ActionType
	EntityType domain.EntityType
	EntityID   uuid.UUID
	Metadata   map[string]interface{}
}

// ActivityRecorder appends activity entries after a mutation has committed.
// Record never fails the caller; problems are logged and counted.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

type activityRecorderImpl struct {
	activityRepo repository.ActivityRepository
	publisher    realtime.Publisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewActivityRecorder creates a recorder that persists entries and announces them as activity:new
func NewActivityRecorder(activityRepo repository.ActivityRepository, publisher realtime.Publisher, m *metrics.Metrics, logger *zap.Logger) ActivityRecorder {
	return &activityRecorderImpl{
		activityRepo: activityRepo,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

func (r *activityRecorderImpl) Record(ctx context.Context, entry ActivityEntry) {
	activity := &domain.Activity{
		BoardID:    entry.BoardID,
		UserID:     entry.UserID,
		ActionType: entry.ActionType,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	}
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			r.logger.Warn("Dropping unserializable activity metadata",
				zap.String("action_type", string(entry.ActionType)),
				zap.Error(err),
			)
		} else {
			activity.Metadata = raw
		}
	}

	if err := r.activityRepo.Create(ctx, activity); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementActivityFailure()
		}
		r.logger.Error("Failed to record activity",
			zap.String("board_id", entry.BoardID.String()),
			zap.String("action_type", string(entry.ActionType)),
			zap.String("entity_id", entry.EntityID.String()),
			zap.Error(err),
		)
		return
	}

	if err := r.publisher.Publish(ctx, entry.BoardID, domain.EventActivityNew, toActivityResponse(activity)); err != nil {
		r.logger.Warn("Failed to publish activity",
			zap.String("board_id", entry.BoardID.String()),
			zap.Error(err),
		)
	}
}

// publishEvent announces a committed mutation. Fanout is best-effort so errors are only logged.
func publishEvent(ctx context.Context, publisher realtime.Publisher, logger *zap.Logger, boardID uuid.UUID, event string, payload interface{}) {
	if err := publisher.Publish(ctx, boardID, event, payload); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("board_id", boardID.String()),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func toActivityResponse(a *domain.Activity) *dto.ActivityResponse {
	resp := &dto.ActivityResponse{
		ID:         a.ID,
		BoardID:    a.BoardID,
		UserID:     a.UserID,
		ActionType: string(a.ActionType),
		EntityType: string(a.EntityType),
		EntityID:   a.EntityID,
		CreatedAt:  a.CreatedAt,
	}
	if len(a.Metadata) > 0 {
		resp.Metadata = json.RawMessage(a.Metadata)
	}
	return resp
}
