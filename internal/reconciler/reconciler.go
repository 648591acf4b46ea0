package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/realtime"
)

// Fetcher loads the authoritative board state
type Fetcher interface {
	FetchSnapshot(ctx context.Context, boardID uuid.UUID) (*dto.BoardSnapshotResponse, error)
}

// Mover submits a move to the server
type Mover interface {
	MoveTask(ctx context.Context, taskID, targetListID uuid.UUID, newPosition int) (*dto.MoveTaskResponse, error)
}

// Reconciler owns one board's View and keeps it consistent with the server
type Reconciler struct {
	boardID     uuid.UUID
	fetcher     Fetcher
	mover       Mover
	activityCap int
	logger      *zap.Logger

	mu   sync.RWMutex
	view *View

	// OnChange, when set, receives a copy of the view after every change
	OnChange func(*View)
}

// New creates a reconciler. Call Sync before handling events.
func New(boardID uuid.UUID, fetcher Fetcher, mover Mover, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		boardID:     boardID,
		fetcher:     fetcher,
		mover:       mover,
		activityCap: 50,
		logger:      logger,
	}
}

// View returns a copy of the current view, or nil before the first Sync
func (r *Reconciler) View() *View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.view == nil {
		return nil
	}
	return r.view.Clone()
}

// Sync replaces the view with a fresh snapshot
func (r *Reconciler) Sync(ctx context.Context) error {
	snap, err := r.fetcher.FetchSnapshot(ctx, r.boardID)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	r.mu.Lock()
	var activity []dto.ActivityResponse
	if r.view != nil {
		activity = r.view.Activity
	}
	r.view = NewView(snap, r.activityCap)
	r.view.Activity = activity
	r.mu.Unlock()

	r.notify()
	return nil
}

// Handle applies one server event, refetching when the view cannot apply it
func (r *Reconciler) Handle(ctx context.Context, env realtime.Envelope) (Outcome, error) {
	r.mu.Lock()
	if r.view == nil {
		r.mu.Unlock()
		return NeedsRefetch, r.Sync(ctx)
	}
	outcome := r.view.Apply(env)
	r.mu.Unlock()

	switch outcome {
	case Applied:
		r.notify()
	case NeedsRefetch:
		r.logger.Debug("Refetching board after unreconcilable event",
			zap.String("board_id", r.boardID.String()),
			zap.String("event", env.Event),
		)
		return outcome, r.Sync(ctx)
	}
	return outcome, nil
}

// Run consumes events until ctx is done or events closes. Every value on
// resync (for example a stream reconnect) triggers a full refetch since
// events may have been missed.
func (r *Reconciler) Run(ctx context.Context, events <-chan realtime.Envelope, resync <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-resync:
			if err := r.Sync(ctx); err != nil {
				r.logger.Warn("Resync failed", zap.Error(err))
			}
		case env, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := r.Handle(ctx, env); err != nil {
				r.logger.Warn("Failed to reconcile event",
					zap.String("event", env.Event),
					zap.Error(err),
				)
			}
		}
	}
}

// MoveTask applies the move locally right away, then asks the server.
// If the server rejects it the view is rebuilt from a snapshot.
func (r *Reconciler) MoveTask(ctx context.Context, taskID, targetListID uuid.UUID, newPosition int) (*dto.MoveTaskResponse, error) {
	r.mu.Lock()
	if r.view != nil {
		if source, _ := r.view.FindTask(taskID); source != nil {
			r.view.ApplyMove(taskID, source.ID, targetListID, newPosition)
		}
	}
	r.mu.Unlock()
	r.notify()

	res, err := r.mover.MoveTask(ctx, taskID, targetListID, newPosition)
	if err != nil {
		if syncErr := r.Sync(ctx); syncErr != nil {
			r.logger.Warn("Failed to revert optimistic move", zap.Error(syncErr))
		}
		return nil, err
	}

	r.mu.RLock()
	consistent := false
	if r.view != nil {
		if holder, idx := r.view.FindTask(taskID); holder != nil {
			consistent = holder.ID == res.TargetListID && idx == res.NewPosition-1
		}
	}
	r.mu.RUnlock()
	if !consistent {
		return res, r.Sync(ctx)
	}
	return res, nil
}

func (r *Reconciler) notify() {
	if r.OnChange == nil {
		return
	}
	if v := r.View(); v != nil {
		r.OnChange(v)
	}
}
