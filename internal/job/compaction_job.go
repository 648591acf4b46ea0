package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/position"
	"taskflow-board-api/internal/repository"
)

// CompactionJob restores dense 1..n positions for lists and boards left
// sparse by deletes. Display order never changes, only the stored numbers.
type CompactionJob struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	timeout time.Duration
}

// NewCompactionJob creates a new CompactionJob instance
func NewCompactionJob(store repository.Store, m *metrics.Metrics, logger *zap.Logger) *CompactionJob {
	return &CompactionJob{
		store:   store,
		metrics: m,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// Schedule registers the job on c using a six-field cron expression
func (j *CompactionJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddJob(spec, j)
	if err != nil {
		return 0, fmt.Errorf("invalid compaction schedule %q: %w", spec, err)
	}
	return id, nil
}

// Run executes one compaction pass. It satisfies cron.Job.
func (j *CompactionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.logger.Info("Starting position compaction job")

	compacted, err := j.Compact(ctx)
	if err != nil {
		j.logger.Error("Position compaction failed",
			zap.Int("compacted", compacted),
			zap.Error(err),
		)
		return
	}

	j.logger.Info("Position compaction job completed",
		zap.Int("compacted", compacted),
	)
}

// Compact reindexes every sparse list and board and returns how many
// containers were rewritten. A failure on one container is logged and the
// pass continues; the first lookup error aborts it.
func (j *CompactionJob) Compact(ctx context.Context) (int, error) {
	listIDs, err := j.store.Tasks().FindSparseListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("find sparse lists: %w", err)
	}
	boardIDs, err := j.store.Lists().FindSparseBoardIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("find sparse boards: %w", err)
	}

	compacted := 0
	for _, listID := range listIDs {
		if err := j.compactList(ctx, listID); err != nil {
			j.logger.Warn("Failed to compact list",
				zap.String("list_id", listID.String()),
				zap.Error(err),
			)
			continue
		}
		compacted++
	}
	for _, boardID := range boardIDs {
		if err := j.compactBoard(ctx, boardID); err != nil {
			j.logger.Warn("Failed to compact board",
				zap.String("board_id", boardID.String()),
				zap.Error(err),
			)
			continue
		}
		compacted++
	}

	if compacted > 0 {
		j.metrics.AddCompacted(compacted)
	}
	return compacted, nil
}

func (j *CompactionJob) compactList(ctx context.Context, listID uuid.UUID) error {
	return j.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Lists().LockForUpdate(ctx, listID); err != nil {
			return err
		}
		seq, err := tx.Tasks().OrderedIDs(ctx, listID)
		if err != nil {
			return err
		}
		return tx.Tasks().SetPositions(ctx, listID, seq, position.Reindex(seq))
	})
}

func (j *CompactionJob) compactBoard(ctx context.Context, boardID uuid.UUID) error {
	return j.store.InTx(ctx, func(tx repository.Store) error {
		lists, err := tx.Lists().FindByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(lists))
		positions := make([]int, len(lists))
		for i, l := range lists {
			ids[i], positions[i] = l.ID, l.Position
		}
		// a concurrent compaction pass or list delete may have rewritten the board since the scan
		if position.IsDense(positions) {
			return nil
		}
		seq := position.FromPositions(ids, positions)
		return tx.Lists().SetPositions(ctx, seq, position.Reindex(seq))
	})
}
