package service

import (
	"github.com/google/uuid"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
)

func toBoardResponse(b *domain.Board, role domain.BoardRole) *dto.BoardResponse {
	return &dto.BoardResponse{
		ID:        b.ID,
		Title:     b.Title,
		CreatedBy: b.CreatedBy,
		Role:      string(role),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toListResponse(l *domain.List) *dto.ListResponse {
	return &dto.ListResponse{
		ID:        l.ID,
		BoardID:   l.BoardID,
		Title:     l.Title,
		Position:  l.Position,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toTaskResponse(t *domain.Task, assignees []uuid.UUID) *dto.TaskResponse {
	if assignees == nil {
		assignees = []uuid.UUID{}
	}
	return &dto.TaskResponse{
		ID:          t.ID,
		ListID:      t.ListID,
		Title:       t.Title,
		Description: t.Description,
		Position:    t.Position,
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		AssigneeIDs: assignees,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toMemberResponse(m *domain.BoardMember) *dto.MemberResponse {
	return &dto.MemberResponse{
		BoardID:  m.BoardID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

// assigneesByTask groups assignment rows by task id
func assigneesByTask(assignments []*domain.TaskAssignment) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, a := range assignments {
		out[a.TaskID] = append(out[a.TaskID], a.UserID)
	}
	return out
}
