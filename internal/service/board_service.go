package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/response"
)

// BoardService defines the interface for board business logic
type BoardService interface {
	CreateBoard(ctx context.Context, actorID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error)
	GetUserBoards(ctx context.Context, actorID uuid.UUID) ([]*dto.BoardResponse, error)
	GetBoard(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardResponse, error)
	GetBoardSnapshot(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardSnapshotResponse, error)
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	store    repository.Store
	activity ActivityRecorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(store repository.Store, activity ActivityRecorder, m *metrics.Metrics, logger *zap.Logger) BoardService {
	return &boardServiceImpl{
		store:    store,
		activity: activity,
		metrics:  m,
		logger:   logger,
	}
}

// CreateBoard creates a board and makes the caller its first admin
func (s *boardServiceImpl) CreateBoard(ctx context.Context, actorID uuid.UUID, req *dto.CreateBoardRequest) (*dto.BoardResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewValidationError("Board title is required", "")
	}

	board := &domain.Board{
		Title:     title,
		CreatedBy: actorID,
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Boards().Create(ctx, board); err != nil {
			return err
		}
		return tx.Members().Create(ctx, &domain.BoardMember{
			BoardID:  board.ID,
			UserID:   actorID,
			Role:     domain.BoardRoleAdmin,
			JoinedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, translateError(err, "Failed to create board")
	}

	if s.metrics != nil {
		s.metrics.IncrementBoardCreated()
	}
	s.logger.Info("Board created",
		zap.String("board_id", board.ID.String()),
		zap.String("user_id", actorID.String()),
	)
	s.activity.Record(ctx, ActivityEntry{
		BoardID:    board.ID,
		UserID:     actorID,
		ActionType: domain.ActionBoardCreated,
		EntityType: domain.EntityBoard,
		EntityID:   board.ID,
		Metadata:   map[string]interface{}{"title": board.Title},
	})

	return toBoardResponse(board, domain.BoardRoleAdmin), nil
}

// GetUserBoards lists the boards the caller belongs to, newest first
func (s *boardServiceImpl) GetUserBoards(ctx context.Context, actorID uuid.UUID) ([]*dto.BoardResponse, error) {
	memberships, err := s.store.Members().FindByUser(ctx, actorID)
	if err != nil {
		return nil, translateError(err, "Failed to fetch memberships")
	}

	roles := make(map[uuid.UUID]domain.BoardRole, len(memberships))
	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		roles[m.BoardID] = m.Role
		ids = append(ids, m.BoardID)
	}

	boards, err := s.store.Boards().FindByIDs(ctx, ids)
	if err != nil {
		return nil, translateError(err, "Failed to fetch boards")
	}

	responses := make([]*dto.BoardResponse, len(boards))
	for i, b := range boards {
		responses[i] = toBoardResponse(b, roles[b.ID])
	}
	return responses, nil
}

// GetBoard returns a single board with the caller's role
func (s *boardServiceImpl) GetBoard(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardResponse, error) {
	board, role, err := loadBoard(ctx, s.store, boardID, actorID)
	if err != nil {
		return nil, err
	}
	return toBoardResponse(board, role), nil
}

// GetBoardSnapshot returns the board with every list and task in display order.
// All reads share one transaction so the snapshot never straddles a move.
func (s *boardServiceImpl) GetBoardSnapshot(ctx context.Context, boardID, actorID uuid.UUID) (*dto.BoardSnapshotResponse, error) {
	var snapshot *dto.BoardSnapshotResponse
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		board, role, err := loadBoard(ctx, tx, boardID, actorID)
		if err != nil {
			return err
		}

		lists, err := tx.Lists().FindByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		listIDs := make([]uuid.UUID, len(lists))
		for i, l := range lists {
			listIDs[i] = l.ID
		}

		tasks, err := tx.Tasks().FindByLists(ctx, listIDs)
		if err != nil {
			return err
		}
		taskIDs := make([]uuid.UUID, len(tasks))
		for i, t := range tasks {
			taskIDs[i] = t.ID
		}
		assignments, err := tx.Assignments().FindByTasks(ctx, taskIDs)
		if err != nil {
			return err
		}
		assignees := assigneesByTask(assignments)

		byList := make(map[uuid.UUID][]dto.TaskResponse, len(lists))
		for _, t := range tasks {
			byList[t.ListID] = append(byList[t.ListID], *toTaskResponse(t, assignees[t.ID]))
		}

		snapshot = &dto.BoardSnapshotResponse{
			Board: *toBoardResponse(board, role),
			Lists: make([]dto.ListWithTasksResponse, len(lists)),
		}
		for i, l := range lists {
			items := byList[l.ID]
			if items == nil {
				items = []dto.TaskResponse{}
			}
			snapshot.Lists[i] = dto.ListWithTasksResponse{
				ListResponse: *toListResponse(l),
				Tasks:        items,
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err, "Failed to load board snapshot")
	}
	return snapshot, nil
}

// loadBoard distinguishes a missing board (NotFound) from one the caller cannot see (Forbidden)
func loadBoard(ctx context.Context, store repository.Store, boardID, actorID uuid.UUID) (*domain.Board, domain.BoardRole, error) {
	board, err := store.Boards().FindByID(ctx, boardID)
	if err != nil {
		return nil, "", translateError(err, "Board not found")
	}
	role, err := requireMember(ctx, store.Members(), boardID, actorID)
	if err != nil {
		return nil, "", err
	}
	return board, role, nil
}
