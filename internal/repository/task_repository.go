package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/position"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByList(ctx context.Context, listID uuid.UUID) ([]*domain.Task, error)
	FindByLists(ctx context.Context, listIDs []uuid.UUID) ([]*domain.Task, error)
	OrderedIDs(ctx context.Context, listID uuid.UUID) (position.Sequence, error)
	NextPosition(ctx context.Context, listID uuid.UUID) (int, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetPositions(ctx context.Context, listID uuid.UUID, order position.Sequence, positions map[uuid.UUID]int) error
	FindSparseListIDs(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context) (int64, error)
}

// taskRepositoryImpl is the GORM implementation of TaskRepository
type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

func (r *taskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit("Assignments").Create(task).Error
}

func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByList returns the list's tasks in display order.
// Ties on position (possible only before a list has ever been reindexed) break by creation time.
func (r *taskRepositoryImpl) FindByList(ctx context.Context, listID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.ordered(ctx).Where("list_id = ?", listID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByLists returns tasks of several lists, each list's tasks in display order
func (r *taskRepositoryImpl) FindByLists(ctx context.Context, listIDs []uuid.UUID) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	if len(listIDs) == 0 {
		return tasks, nil
	}
	if err := r.ordered(ctx).Where("list_id IN ?", listIDs).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// OrderedIDs returns the list's task ids in display order
func (r *taskRepositoryImpl) OrderedIDs(ctx context.Context, listID uuid.UUID) (position.Sequence, error) {
	var rows []struct {
		ID uuid.UUID
	}
	if err := r.ordered(ctx).
		Model(&domain.Task{}).
		Select("id").
		Where("list_id = ?", listID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	seq := make(position.Sequence, len(rows))
	for i, row := range rows {
		seq[i] = row.ID
	}
	return seq, nil
}

func (r *taskRepositoryImpl) ordered(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Order("position ASC").
		Order("created_at ASC").
		Order("id ASC")
}

// NextPosition returns max(position)+1 for the list, 1 for an empty list
func (r *taskRepositoryImpl) NextPosition(ctx context.Context, listID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("list_id = ?", listID).
		Select("COALESCE(MAX(position), 0) + 1").
		Scan(&next).Error
	return next, err
}

// Update applies the given column values; an empty map is a no-op
func (r *taskRepositoryImpl) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the task and its assignments. Sibling positions are not compacted.
func (r *taskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", id).Delete(&domain.TaskAssignment{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&domain.Task{}).Error
}

// SetPositions moves every task in order into listID with positions[id].
// Rows are written in sequence order so concurrent writers acquire locks consistently.
func (r *taskRepositoryImpl) SetPositions(ctx context.Context, listID uuid.UUID, order position.Sequence, positions map[uuid.UUID]int) error {
	now := time.Now().UTC()
	for _, id := range order {
		res := r.db.WithContext(ctx).
			Model(&domain.Task{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"list_id":    listID,
				"position":   positions[id],
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// FindSparseListIDs returns lists whose task positions are not exactly {1..n}
func (r *taskRepositoryImpl) FindSparseListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("list_id").
		Group("list_id").
		Having("MIN(position) <> 1 OR MAX(position) <> COUNT(*) OR COUNT(DISTINCT position) <> COUNT(*)").
		Scan(&ids).Error
	return ids, err
}

func (r *taskRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Count(&count).Error
	return count, err
}
