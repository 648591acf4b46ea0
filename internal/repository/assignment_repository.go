package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskflow-board-api/internal/domain"
)

// AssignmentRepository defines the interface for task assignment data access
type AssignmentRepository interface {
	// Create inserts the assignment; an existing (task, user) pair is left untouched.
	// The returned bool reports whether a row was inserted.
	Create(ctx context.Context, assignment *domain.TaskAssignment) (bool, error)
	Delete(ctx context.Context, taskID, userID uuid.UUID) (bool, error)
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAssignment, error)
	FindByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]*domain.TaskAssignment, error)
}

// assignmentRepositoryImpl is the GORM implementation of AssignmentRepository
type assignmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

func (r *assignmentRepositoryImpl) Create(ctx context.Context, assignment *domain.TaskAssignment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(assignment)
	return res.RowsAffected > 0, res.Error
}

func (r *assignmentRepositoryImpl) Delete(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&domain.TaskAssignment{})
	return res.RowsAffected > 0, res.Error
}

func (r *assignmentRepositoryImpl) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskAssignment, error) {
	var assignments []*domain.TaskAssignment
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepositoryImpl) FindByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]*domain.TaskAssignment, error) {
	assignments := make([]*domain.TaskAssignment, 0)
	if len(taskIDs) == 0 {
		return assignments, nil
	}
	if err := r.db.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("assigned_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
