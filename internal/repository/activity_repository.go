package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
)

// ActivityRepository is append-only: there is no update or delete
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	FindRecentByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error)
}

// activityRepositoryImpl is the GORM implementation of ActivityRepository
type activityRepositoryImpl struct {
	db *gorm.DB
}

// NewActivityRepository creates a new instance of ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepositoryImpl{db: db}
}

func (r *activityRepositoryImpl) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// FindRecentByBoard returns up to limit entries, newest first
func (r *activityRepositoryImpl) FindRecentByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
