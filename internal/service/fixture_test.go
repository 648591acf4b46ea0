package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/testutil"
)

// fixture wires every service against a private SQLite database
type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	store    repository.Store
	pub      *MockPublisher
	metrics  *metrics.Metrics
	activity ActivityRecorder

	boards      BoardService
	lists       ListService
	tasks       TaskService
	moves       MoveService
	members     MemberService
	assignments AssignmentService
	feed        ActivityService

	admin   uuid.UUID
	boardID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := repository.NewStore(db, sql.LevelDefault)
	pub := &MockPublisher{}
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
	logger := zap.NewNop()
	recorder := NewActivityRecorder(repository.NewActivityRepository(db), pub, m, logger)

	f := &fixture{
		t:           t,
		ctx:         context.Background(),
		db:          db,
		store:       store,
		pub:         pub,
		metrics:     m,
		activity:    recorder,
		boards:      NewBoardService(store, recorder, m, logger),
		lists:       NewListService(store, pub, recorder, logger),
		tasks:       NewTaskService(store, pub, recorder, m, logger),
		members:     NewMemberService(store, recorder, logger),
		assignments: NewAssignmentService(store, pub, recorder, logger),
		feed:        NewActivityService(store, 50),
		admin:       uuid.New(),
	}
	f.moves = f.newMoveService(store)

	board, err := f.boards.CreateBoard(f.ctx, f.admin, &dto.CreateBoardRequest{Title: "Sprint"})
	require.NoError(t, err)
	f.boardID = board.ID
	pub.Reset()
	return f
}

func (f *fixture) newMoveService(store repository.Store) MoveService {
	return NewMoveService(store, f.pub, f.activity, MoveConfig{Timeout: 5 * time.Second, MaxRetries: 3}, f.metrics, zap.NewNop())
}

func (f *fixture) newList(title string) uuid.UUID {
	f.t.Helper()
	list, err := f.lists.CreateList(f.ctx, f.boardID, f.admin, &dto.CreateListRequest{Title: title})
	require.NoError(f.t, err)
	return list.ID
}

// newTasks appends tasks with the given titles and returns their ids by title
func (f *fixture) newTasks(listID uuid.UUID, titles ...string) map[string]uuid.UUID {
	f.t.Helper()
	ids := make(map[string]uuid.UUID, len(titles))
	for _, title := range titles {
		task, err := f.tasks.CreateTask(f.ctx, listID, f.admin, &dto.CreateTaskRequest{Title: title})
		require.NoError(f.t, err)
		ids[title] = task.ID
	}
	return ids
}

func (f *fixture) addMember(userID uuid.UUID, role domain.BoardRole) {
	f.t.Helper()
	_, err := f.members.AddMember(f.ctx, f.boardID, f.admin, &dto.AddMemberRequest{UserID: userID, Role: string(role)})
	require.NoError(f.t, err)
}

type placed struct {
	Title    string
	Position int
}

// layout reads a list straight from the database in display order
func (f *fixture) layout(listID uuid.UUID) []placed {
	f.t.Helper()
	var tasks []domain.Task
	require.NoError(f.t, f.db.Where("list_id = ?", listID).Order("position ASC, created_at ASC, id ASC").Find(&tasks).Error)
	out := make([]placed, len(tasks))
	for i, task := range tasks {
		out[i] = placed{Title: task.Title, Position: task.Position}
	}
	return out
}

func (f *fixture) activityCount() int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(&domain.Activity{}).Where("board_id = ?", f.boardID).Count(&n).Error)
	return n
}

func dense(layout []placed) bool {
	for i, p := range layout {
		if p.Position != i+1 {
			return false
		}
	}
	return true
}
