package metrics

import "time"

// IncrementBoardCreated increments board creation counter
func (m *Metrics) IncrementBoardCreated() {
	m.safeExecute("IncrementBoardCreated", func() {
		m.BoardCreatedTotal.Inc()
	})
}

// IncrementTaskCreated increments task creation counter
func (m *Metrics) IncrementTaskCreated() {
	m.safeExecute("IncrementTaskCreated", func() {
		m.TaskCreatedTotal.Inc()
	})
}

// RecordTaskMove records the outcome and duration of a move transaction
func (m *Metrics) RecordTaskMove(outcome string, duration time.Duration) {
	m.safeExecute("RecordTaskMove", func() {
		m.TaskMovesTotal.WithLabelValues(outcome).Inc()
		m.TaskMoveDuration.Observe(duration.Seconds())
	})
}

func (m *Metrics) IncrementTaskMoveRetry() {
	m.safeExecute("IncrementTaskMoveRetry", func() {
		m.TaskMoveRetries.Inc()
	})
}

func (m *Metrics) IncrementActivityFailure() {
	m.safeExecute("IncrementActivityFailure", func() {
		m.ActivityFailures.Inc()
	})
}

func (m *Metrics) AddCompacted(n int) {
	m.safeExecute("AddCompacted", func() {
		m.CompactedLists.Add(float64(n))
	})
}

// SetBoardsTotal sets total boards gauge
func (m *Metrics) SetBoardsTotal(count int64) {
	m.safeExecute("SetBoardsTotal", func() {
		m.BoardsTotal.Set(float64(count))
	})
}

// SetListsTotal sets total lists gauge
func (m *Metrics) SetListsTotal(count int64) {
	m.safeExecute("SetListsTotal", func() {
		m.ListsTotal.Set(float64(count))
	})
}

// SetTasksTotal sets total tasks gauge
func (m *Metrics) SetTasksTotal(count int64) {
	m.safeExecute("SetTasksTotal", func() {
		m.TasksTotal.Set(float64(count))
	})
}
