package service

import (
	"context"

	"github.com/google/uuid"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/repository"
)

// ActivityService reads a board's activity feed
type ActivityService interface {
	GetActivity(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ActivityResponse, error)
}

type activityServiceImpl struct {
	store repository.Store
	limit int
}

// NewActivityService creates a feed reader returning at most limit entries
func NewActivityService(store repository.Store, limit int) ActivityService {
	if limit <= 0 {
		limit = 50
	}
	return &activityServiceImpl{store: store, limit: limit}
}

// GetActivity returns the latest entries, newest first
func (s *activityServiceImpl) GetActivity(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ActivityResponse, error) {
	if _, _, err := loadBoard(ctx, s.store, boardID, actorID); err != nil {
		return nil, err
	}
	activities, err := s.store.Activities().FindRecentByBoard(ctx, boardID, s.limit)
	if err != nil {
		return nil, translateError(err, "Failed to fetch activity")
	}
	responses := make([]*dto.ActivityResponse, len(activities))
	for i, a := range activities {
		responses[i] = toActivityResponse(a)
	}
	return responses, nil
}
