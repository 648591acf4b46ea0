package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
)

// MemberRepository defines the interface for board membership data access
type MemberRepository interface {
	Create(ctx context.Context, member *domain.BoardMember) error
	FindRole(ctx context.Context, boardID, userID uuid.UUID) (domain.BoardRole, error)
	FindByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.BoardMember, error)
	CountByRole(ctx context.Context, boardID uuid.UUID, role domain.BoardRole) (int64, error)
	Delete(ctx context.Context, boardID, userID uuid.UUID) error
}

// memberRepositoryImpl is the GORM implementation of MemberRepository
type memberRepositoryImpl struct {
	db *gorm.DB
}

// NewMemberRepository creates a new instance of MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepositoryImpl{db: db}
}

func (r *memberRepositoryImpl) Create(ctx context.Context, member *domain.BoardMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindRole returns the user's role on the board, or gorm.ErrRecordNotFound if the user is not a member
func (r *memberRepositoryImpl) FindRole(ctx context.Context, boardID, userID uuid.UUID) (domain.BoardRole, error) {
	var member domain.BoardMember
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error; err != nil {
		return "", err
	}
	return member.Role, nil
}

// FindByBoard returns members in join order
func (r *memberRepositoryImpl) FindByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error) {
	var members []*domain.BoardMember
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepositoryImpl) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.BoardMember, error) {
	var members []*domain.BoardMember
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepositoryImpl) CountByRole(ctx context.Context, boardID uuid.UUID, role domain.BoardRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BoardMember{}).
		Where("board_id = ? AND role = ?", boardID, role).
		Count(&count).Error
	return count, err
}

// Delete removes the membership and the user's assignments on the board's tasks
func (r *memberRepositoryImpl) Delete(ctx context.Context, boardID, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	taskIDs := db.Model(&domain.Task{}).
		Select("tasks.id").
		Joins("JOIN lists ON lists.id = tasks.list_id").
		Where("lists.board_id = ?", boardID)
	if err := db.Where("user_id = ? AND task_id IN (?)", userID, taskIDs).
		Delete(&domain.TaskAssignment{}).Error; err != nil {
		return err
	}
	res := db.Where("board_id = ? AND user_id = ?", boardID, userID).Delete(&domain.BoardMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
