package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

// translateError maps a persistence error onto the AppError taxonomy.
// AppErrors pass through untouched so checks made inside a transaction
// surface with their own code.
func translateError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NewNotFoundError(message, "")
	case repository.IsCanceled(err):
		return response.NewAbortedError("Operation cancelled or timed out", err.Error())
	case repository.IsRetryable(err):
		return response.NewAbortedError("Concurrent update conflict, please retry", err.Error())
	case repository.IsUnavailable(err):
		return response.NewUnavailableError("Storage unavailable", err.Error())
	default:
		return response.NewAppError(response.ErrCodeInternal, message, err.Error())
	}
}

// requireMember returns the actor's role on the board or a Forbidden error
func requireMember(ctx context.Context, members repository.MemberRepository, boardID, actorID uuid.UUID) (domain.BoardRole, error) {
	role, err := members.FindRole(ctx, boardID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NewForbiddenError("Not a member of this board", "")
		}
		return "", translateError(err, "Failed to verify membership")
	}
	return role, nil
}

// requireAdmin is requireMember restricted to admins
func requireAdmin(ctx context.Context, members repository.MemberRepository, boardID, actorID uuid.UUID) error {
	role, err := requireMember(ctx, members, boardID, actorID)
	if err != nil {
		return err
	}
	if role != domain.BoardRoleAdmin {
		return response.NewForbiddenError("Only board admins can manage members", "")
	}
	return nil
}
