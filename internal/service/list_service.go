package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

// ListService defines the interface for list business logic
type ListService interface {
	CreateList(ctx context.Context, boardID, actorID uuid.UUID, req *dto.CreateListRequest) (*dto.ListResponse, error)
	UpdateList(ctx context.Context, listID, actorID uuid.UUID, req *dto.UpdateListRequest) (*dto.ListResponse, error)
	DeleteList(ctx context.Context, listID, actorID uuid.UUID) error
	GetLists(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ListResponse, error)
}

type listServiceImpl struct {
	store     repository.Store
	publisher realtime.Publisher
	activity  ActivityRecorder
	logger    *zap.Logger
}

// NewListService creates a new instance of ListService
func NewListService(store repository.Store, publisher realtime.Publisher, activity ActivityRecorder, logger *zap.Logger) ListService {
	return &listServiceImpl{
		store:     store,
		publisher: publisher,
		activity:  activity,
		logger:    logger,
	}
}

// CreateList appends a list after the board's last one
func (s *listServiceImpl) CreateList(ctx context.Context, boardID, actorID uuid.UUID, req *dto.CreateListRequest) (*dto.ListResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewValidationError("List title is required", "")
	}

	list := &domain.List{BoardID: boardID, Title: title}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, _, err := loadBoard(ctx, tx, boardID, actorID); err != nil {
			return err
		}
		next, err := tx.Lists().NextPosition(ctx, boardID)
		if err != nil {
			return err
		}
		list.Position = next
		return tx.Lists().Create(ctx, list)
	})
	if err != nil {
		return nil, translateError(err, "Failed to create list")
	}

	resp := toListResponse(list)
	publishEvent(ctx, s.publisher, s.logger, boardID, domain.EventListCreated, resp)
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    boardID,
		UserID:     actorID,
		ActionType: domain.ActionListCreated,
		EntityType: domain.EntityList,
		EntityID:   list.ID,
		Metadata:   map[string]interface{}{"title": list.Title},
	})
	return resp, nil
}

// UpdateList renames a list
func (s *listServiceImpl) UpdateList(ctx context.Context, listID, actorID uuid.UUID, req *dto.UpdateListRequest) (*dto.ListResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewValidationError("List title is required", "")
	}

	var list *domain.List
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if list, err = loadList(ctx, tx, listID, actorID); err != nil {
			return err
		}
		if err := tx.Lists().UpdateTitle(ctx, listID, title); err != nil {
			return err
		}
		list, err = tx.Lists().FindByID(ctx, listID)
		return err
	})
	if err != nil {
		return nil, translateError(err, "Failed to update list")
	}

	resp := toListResponse(list)
	publishEvent(ctx, s.publisher, s.logger, list.BoardID, domain.EventListUpdated, resp)
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    list.BoardID,
		UserID:     actorID,
		ActionType: domain.ActionListUpdated,
		EntityType: domain.EntityList,
		EntityID:   list.ID,
		Metadata:   map[string]interface{}{"title": list.Title},
	})
	return resp, nil
}

// DeleteList removes a list with its tasks. Remaining lists keep their positions.
func (s *listServiceImpl) DeleteList(ctx context.Context, listID, actorID uuid.UUID) error {
	var list *domain.List
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		if list, err = loadList(ctx, tx, listID, actorID); err != nil {
			return err
		}
		return tx.Lists().Delete(ctx, listID)
	})
	if err != nil {
		return translateError(err, "Failed to delete list")
	}

	publishEvent(ctx, s.publisher, s.logger, list.BoardID, domain.EventListDeleted, dto.ListDeletedEvent{ListID: listID})
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    list.BoardID,
		UserID:     actorID,
		ActionType: domain.ActionListDeleted,
		EntityType: domain.EntityList,
		EntityID:   listID,
		Metadata:   map[string]interface{}{"title": list.Title},
	})
	return nil
}

// GetLists returns the board's lists in display order
func (s *listServiceImpl) GetLists(ctx context.Context, boardID, actorID uuid.UUID) ([]*dto.ListResponse, error) {
	if _, _, err := loadBoard(ctx, s.store, boardID, actorID); err != nil {
		return nil, err
	}
	lists, err := s.store.Lists().FindByBoard(ctx, boardID)
	if err != nil {
		return nil, translateError(err, "Failed to fetch lists")
	}
	responses := make([]*dto.ListResponse, len(lists))
	for i, l := range lists {
		responses[i] = toListResponse(l)
	}
	return responses, nil
}

// loadList fetches a list and checks the actor belongs to its board
func loadList(ctx context.Context, store repository.Store, listID, actorID uuid.UUID) (*domain.List, error) {
	list, err := store.Lists().FindByID(ctx, listID)
	if err != nil {
		return nil, translateError(err, "List not found")
	}
	if _, err := requireMember(ctx, store.Members(), list.BoardID, actorID); err != nil {
		return nil, err
	}
	return list, nil
}
