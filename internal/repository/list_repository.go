package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskflow-board-api/internal/domain"
)

// ListRepository defines the interface for list data access
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.List, error)
	FindByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error)
	NextPosition(ctx context.Context, boardID uuid.UUID) (int, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
	Delete(ctx context.Context, id uuid.UUID) error
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) error
	SetPositions(ctx context.Context, order []uuid.UUID, positions map[uuid.UUID]int) error
	FindSparseBoardIDs(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context) (int64, error)
}

// listRepositoryImpl is the GORM implementation of ListRepository
type listRepositoryImpl struct {
	db *gorm.DB
}

// NewListRepository creates a new instance of ListRepository
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepositoryImpl{db: db}
}

func (r *listRepositoryImpl) Create(ctx context.Context, list *domain.List) error {
	return r.db.WithContext(ctx).Omit("Tasks").Create(list).Error
}

func (r *listRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	var list domain.List
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// FindByBoard returns the board's lists in display order
func (r *listRepositoryImpl) FindByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error) {
	var lists []*domain.List
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// NextPosition returns max(position)+1 for the board, 1 for an empty board
func (r *listRepositoryImpl) NextPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&domain.List{}).
		Where("board_id = ?", boardID).
		Select("COALESCE(MAX(position), 0) + 1").
		Scan(&next).Error
	return next, err
}

func (r *listRepositoryImpl) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	return r.db.WithContext(ctx).
		Model(&domain.List{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// Delete removes the list together with its tasks and their assignments.
// Sibling list positions are left as they are.
func (r *listRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	taskIDs := db.Model(&domain.Task{}).Select("id").Where("list_id = ?", id)
	if err := db.Where("task_id IN (?)", taskIDs).Delete(&domain.TaskAssignment{}).Error; err != nil {
		return err
	}
	if err := db.Where("list_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&domain.List{}).Error
}

// LockForUpdate takes row locks on the given lists in id order so concurrent
// moves touching the same lists queue instead of deadlocking. SQLite locks the
// whole database on write, so the call is a no-op there.
func (r *listRepositoryImpl) LockForUpdate(ctx context.Context, ids ...uuid.UUID) error {
	if r.db.Dialector.Name() != "postgres" || len(ids) == 0 {
		return nil
	}
	var locked []domain.List
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id").
		Find(&locked).Error
}

// SetPositions writes positions[id] for every id, in order
func (r *listRepositoryImpl) SetPositions(ctx context.Context, order []uuid.UUID, positions map[uuid.UUID]int) error {
	now := time.Now().UTC()
	for _, id := range order {
		if err := r.db.WithContext(ctx).
			Model(&domain.List{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"position": positions[id], "updated_at": now}).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindSparseBoardIDs returns boards whose list positions are not exactly {1..m}
func (r *listRepositoryImpl) FindSparseBoardIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.List{}).
		Select("board_id").
		Group("board_id").
		Having("MIN(position) <> 1 OR MAX(position) <> COUNT(*) OR COUNT(DISTINCT position) <> COUNT(*)").
		Scan(&ids).Error
	return ids, err
}

func (r *listRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.List{}).Count(&count).Error
	return count, err
}
