package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/response"
)

func TestMoveTask_ReorderWithinList(t *testing.T) {
	f := newFixture(t)
	l := f.newList("Todo")
	ids := f.newTasks(l, "A", "B", "C")

	res, err := f.moves.MoveTask(f.ctx, ids["C"], f.admin, l, 1)
	require.NoError(t, err)

	assert.Equal(t, []placed{{"C", 1}, {"A", 2}, {"B", 3}}, f.layout(l))
	assert.Equal(t, 1, res.NewPosition)
	assert.Equal(t, l, res.SourceListID)
	assert.Equal(t, l, res.TargetListID)
	assert.Equal(t, map[uuid.UUID]int{ids["C"]: 1, ids["A"]: 2, ids["B"]: 3}, res.Positions)

	moved := f.pub.Named(domain.EventTaskMoved)
	require.Len(t, moved, 1)
	assert.Equal(t, f.boardID, moved[0].BoardID)
	assert.Equal(t, dto.TaskMovedEvent{TaskID: ids["C"], SourceListID: l, TargetListID: l, NewPosition: 1}, moved[0].Payload)
}

func TestMoveTask_AcrossLists(t *testing.T) {
	f := newFixture(t)
	l1 := f.newList("Todo")
	l2 := f.newList("Doing")
	ids := f.newTasks(l1, "A", "B")
	f.newTasks(l2, "X")

	res, err := f.moves.MoveTask(f.ctx, ids["A"], f.admin, l2, 2)
	require.NoError(t, err)

	assert.Equal(t, []placed{{"B", 1}}, f.layout(l1))
	assert.Equal(t, []placed{{"X", 1}, {"A", 2}}, f.layout(l2))
	assert.Equal(t, 2, res.NewPosition)
	assert.Len(t, res.Positions, 3)

	moved := f.pub.Named(domain.EventTaskMoved)
	require.Len(t, moved, 1)
	assert.Equal(t, dto.TaskMovedEvent{TaskID: ids["A"], SourceListID: l1, TargetListID: l2, NewPosition: 2}, moved[0].Payload)

	var activity domain.Activity
	require.NoError(t, f.db.Where("action_type = ?", domain.ActionTaskMoved).First(&activity).Error)
	assert.Equal(t, ids["A"], activity.EntityID)
	assert.JSONEq(t, fmt.Sprintf(`{"fromListId":%q,"toListId":%q,"newPosition":2}`, l1, l2), string(activity.Metadata))
}

func TestMoveTask_ClampsRequestedPosition(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      []placed
	}{
		{"zero goes to the front", 0, []placed{{"Z", 1}, {"A", 2}, {"B", 3}}},
		{"negative goes to the front", -7, []placed{{"Z", 1}, {"A", 2}, {"B", 3}}},
		{"far beyond the end goes last", 9999, []placed{{"A", 1}, {"B", 2}, {"Z", 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			l1 := f.newList("Todo")
			l2 := f.newList("Inbox")
			f.newTasks(l1, "A", "B")
			z := f.newTasks(l2, "Z")["Z"]

			res, err := f.moves.MoveTask(f.ctx, z, f.admin, l1, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.layout(l1))
			assert.Empty(t, f.layout(l2))
			for _, p := range tt.want {
				if p.Title == "Z" {
					assert.Equal(t, p.Position, res.NewPosition)
				}
			}
		})
	}
}

func TestMoveTask_RestoresDensityAfterDelete(t *testing.T) {
	f := newFixture(t)
	l := f.newList("Todo")
	ids := f.newTasks(l, "A", "B", "C", "D")

	require.NoError(t, f.tasks.DeleteTask(f.ctx, ids["B"], f.admin))
	assert.Equal(t, []placed{{"A", 1}, {"C", 3}, {"D", 4}}, f.layout(l))

	_, err := f.moves.MoveTask(f.ctx, ids["D"], f.admin, l, 2)
	require.NoError(t, err)
	assert.Equal(t, []placed{{"A", 1}, {"D", 2}, {"C", 3}}, f.layout(l))
}

func TestMoveTask_NonMemberIsForbidden(t *testing.T) {
	f := newFixture(t)
	l := f.newList("Todo")
	ids := f.newTasks(l, "A", "B", "C")
	before := f.layout(l)
	activities := f.activityCount()
	f.pub.Reset()

	_, err := f.moves.MoveTask(f.ctx, ids["C"], uuid.New(), l, 1)

	assert.True(t, response.IsCode(err, response.ErrCodeForbidden), "got %v", err)
	assert.Equal(t, before, f.layout(l))
	assert.Zero(t, f.pub.Count())
	assert.Equal(t, activities, f.activityCount())
}

func TestMoveTask_Errors(t *testing.T) {
	f := newFixture(t)
	l := f.newList("Todo")
	task := f.newTasks(l, "A")["A"]

	t.Run("unknown task", func(t *testing.T) {
		_, err := f.moves.MoveTask(f.ctx, uuid.New(), f.admin, l, 1)
		assert.True(t, response.IsCode(err, response.ErrCodeNotFound))
	})

	t.Run("unknown target list", func(t *testing.T) {
		_, err := f.moves.MoveTask(f.ctx, task, f.admin, uuid.New(), 1)
		assert.True(t, response.IsCode(err, response.ErrCodeNotFound))
	})

	t.Run("target list on another board", func(t *testing.T) {
		other, err := f.boards.CreateBoard(f.ctx, f.admin, &dto.CreateBoardRequest{Title: "Other"})
		require.NoError(t, err)
		foreign, err := f.lists.CreateList(f.ctx, other.ID, f.admin, &dto.CreateListRequest{Title: "Elsewhere"})
		require.NoError(t, err)

		_, err = f.moves.MoveTask(f.ctx, task, f.admin, foreign.ID, 1)
		assert.True(t, response.IsCode(err, response.ErrCodeValidation))
		assert.Equal(t, []placed{{"A", 1}}, f.layout(l))
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		f.pub.Reset()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.moves.MoveTask(ctx, task, f.admin, l, 1)
		assert.True(t, response.IsCode(err, response.ErrCodeAborted), "got %v", err)
		assert.Zero(t, f.pub.Count())
	})
}

// A storage fault after the source list has been rewritten must leave both lists untouched.
func TestMoveTask_FailureRollsBackBothLists(t *testing.T) {
	f := newFixture(t)
	l1 := f.newList("Todo")
	l2 := f.newList("Doing")
	ids := f.newTasks(l1, "A", "B", "C")
	f.newTasks(l2, "X", "Y")
	require.NoError(t, f.tasks.DeleteTask(f.ctx, ids["B"], f.admin))

	before1, before2 := f.layout(l1), f.layout(l2)
	activities := f.activityCount()
	f.pub.Reset()

	moves := f.newMoveService(&failingStore{Store: f.store, failList: l2})
	_, err := moves.MoveTask(f.ctx, ids["A"], f.admin, l2, 1)

	assert.True(t, response.IsCode(err, response.ErrCodeAborted), "got %v", err)
	assert.Equal(t, before1, f.layout(l1))
	assert.Equal(t, before2, f.layout(l2))
	assert.Zero(t, f.pub.Count())
	assert.Equal(t, activities, f.activityCount())
}

func TestMoveTask_RetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	l := f.newList("Todo")
	ids := f.newTasks(l, "A", "B")

	flaky := &retryStore{Store: f.store, failures: 2}
	_, err := f.newMoveService(flaky).MoveTask(f.ctx, ids["B"], f.admin, l, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, []placed{{"B", 1}, {"A", 2}}, f.layout(l))

	broken := &retryStore{Store: f.store, failures: 10}
	_, err = f.newMoveService(broken).MoveTask(f.ctx, ids["B"], f.admin, l, 2)
	assert.True(t, response.IsCode(err, response.ErrCodeAborted))
	assert.Equal(t, 4, broken.calls)
	assert.Equal(t, []placed{{"B", 1}, {"A", 2}}, f.layout(l))
}

func TestMoveTask_MembershipLookupFailures(t *testing.T) {
	f := newFixture(t)
	l := f.newList("Todo")
	ids := f.newTasks(l, "A", "B")

	t.Run("storage fault aborts", func(t *testing.T) {
		store := &memberFaultStore{Store: f.store, err: errors.New("disk I/O error"), failures: 10}
		_, err := f.newMoveService(store).MoveTask(f.ctx, ids["B"], f.admin, l, 1)

		assert.True(t, response.IsCode(err, response.ErrCodeAborted), "got %v", err)
		assert.Equal(t, 1, store.calls)
	})

	t.Run("serialization failure is retried", func(t *testing.T) {
		store := &memberFaultStore{Store: f.store, err: &pgconn.PgError{Code: "40001"}, failures: 2}
		res, err := f.newMoveService(store).MoveTask(f.ctx, ids["B"], f.admin, l, 1)

		require.NoError(t, err)
		assert.Equal(t, 3, store.calls)
		assert.Equal(t, 1, res.NewPosition)
	})

	t.Run("persistent serialization failure aborts after retries", func(t *testing.T) {
		store := &memberFaultStore{Store: f.store, err: &pgconn.PgError{Code: "40001"}, failures: 10}
		_, err := f.newMoveService(store).MoveTask(f.ctx, ids["A"], f.admin, l, 1)

		assert.True(t, response.IsCode(err, response.ErrCodeAborted), "got %v", err)
		assert.Equal(t, 4, store.calls)
	})

	assert.Equal(t, []placed{{"B", 1}, {"A", 2}}, f.layout(l))
}

func TestMoveTask_ConcurrentMovesStayDense(t *testing.T) {
	f := newFixture(t)
	l1 := f.newList("Todo")
	l2 := f.newList("Doing")
	ids := f.newTasks(l1, "A", "B", "C", "D", "E", "F")
	f.newTasks(l2, "X", "Y")

	titles := []string{"A", "B", "C", "D", "E", "F"}
	var wg sync.WaitGroup
	errs := make(chan error, 2*len(titles))
	for i, title := range titles {
		wg.Add(2)
		go func(id uuid.UUID, pos int) {
			defer wg.Done()
			_, err := f.moves.MoveTask(f.ctx, id, f.admin, l1, pos)
			errs <- err
		}(ids[title], i%3+1)
		go func(id uuid.UUID, pos int) {
			defer wg.Done()
			_, err := f.moves.MoveTask(f.ctx, id, f.admin, l2, pos)
			errs <- err
		}(ids[title], 6-i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	got1, got2 := f.layout(l1), f.layout(l2)
	assert.True(t, dense(got1), "todo not dense: %v", got1)
	assert.True(t, dense(got2), "doing not dense: %v", got2)
	assert.Equal(t, 8, len(got1)+len(got2))
	assert.Len(t, f.pub.Named(domain.EventTaskMoved), 2*len(titles))
}
