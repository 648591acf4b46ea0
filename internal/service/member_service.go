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
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

// MemberService defines the interface for board membership business logic
type MemberService interface {
	AddMember(ctx context.Context, boardID, actorID uuid.UUID, req *dto.AddMemberRequest) (*dto.MemberResponse, error)
	RemoveMember(ctx context.Context, boardID, actorID, userID uuid.UUID) error
	GetMembers(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.MemberResponse, error)
}

type memberServiceImpl struct {
	store    repository.Store
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewMemberService creates a new instance of MemberService
func NewMemberService(store repository.Store, activity ActivityRecorder, logger *zap.Logger) MemberService {
	return &memberServiceImpl{
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// AddMember grants a user access to the board. Only admins may add members.
func (s *memberServiceImpl) AddMember(ctx context.Context, boardID, actorID uuid.UUID, req *dto.AddMemberRequest) (*dto.MemberResponse, error) {
	role := domain.BoardRoleMember
	if req.Role != "" {
		role = domain.BoardRole(req.Role)
	}
	if !role.IsValid() {
		return nil, response.NewValidationError("Invalid role", "role must be admin or member")
	}
	if req.UserID == uuid.Nil {
		return nil, response.NewValidationError("User ID is required", "")
	}

	member := &domain.BoardMember{
		BoardID:  boardID,
		UserID:   req.UserID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Boards().FindByID(ctx, boardID); err != nil {
			return translateError(err, "Board not found")
		}
		if err := requireAdmin(ctx, tx.Members(), boardID, actorID); err != nil {
			return err
		}
		_, err := tx.Members().FindRole(ctx, boardID, req.UserID)
		switch {
		case err == nil:
			return response.NewAppError(response.ErrCodeAlreadyExists, "User is already a member of this board", "")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Members().Create(ctx, member)
	})
	if err != nil {
		return nil, translateError(err, "Failed to add member")
	}

	s.logger.Info("Board member added",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("role", string(role)),
	)
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionMemberAdded,
		EntityType: domain.EntityMember,
		EntityID:   req.UserID,
		Metadata:   map[string]interface{}{"role": string(role)},
	})
	return toMemberResponse(member), nil
}

// RemoveMember revokes a user's access. The last admin cannot be removed.
func (s *memberServiceImpl) RemoveMember(ctx context.Context, boardID, actorID, userID uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Boards().FindByID(ctx, boardID); err != nil {
			return translateError(err, "Board not found")
		}
		if err := requireAdmin(ctx, tx.Members(), boardID, actorID); err != nil {
			return err
		}
		role, err := tx.Members().FindRole(ctx, boardID, userID)
		if err != nil {
			return translateError(err, "Member not found")
		}
		if role == domain.BoardRoleAdmin {
			admins, err := tx.Members().CountByRole(ctx, boardID, domain.BoardRoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return response.NewConflictError("Cannot remove the last admin of a board", "")
			}
		}
		return tx.Members().Delete(ctx, boardID, userID)
	})
	if err != nil {
		return translateError(err, "Failed to remove member")
	}

	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionMemberRemoved,
		EntityType: domain.EntityMember,
		EntityID:   userID,
	})
	return nil
}

// GetMembers lists the board's members in join order
func (s *memberServiceImpl) GetMembers(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.MemberResponse, error) {
	if _, _, err := loadBoard(ctx, s.store, boardID, actorID); err != nil {
		return nil, err
	}
	members, err := s.store.Members().FindByBoard(ctx, boardID)
	if err != nil {
		return nil, translateError(err, "Failed to fetch members")
	}
	responses := make([]*dto.MemberResponse, len(members))
	for i, m := range members {
		responses[i] = toMemberResponse(m)
	}
	return responses, nil
}
