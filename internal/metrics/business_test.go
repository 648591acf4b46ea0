package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"taskflow-board-api/internal/testutil"
)

func TestIncrementBoardCreated(t *testing.T) {
	m := getTestMetrics()

	initialValue := getCounterValue(t, m.BoardCreatedTotal)
	m.IncrementBoardCreated()

	assert.Equal(t, initialValue+1, getCounterValue(t, m.BoardCreatedTotal))
}

func TestSetTotals(t *testing.T) {
	m := getTestMetrics()

	tests := []struct {
		name  string
		set   func(int64)
		gauge prometheus.Gauge
		count int64
	}{
		{"zero boards", m.SetBoardsTotal, m.BoardsTotal, 0},
		{"many boards", m.SetBoardsTotal, m.BoardsTotal, 5000000},
		{"lists", m.SetListsTotal, m.ListsTotal, 42},
		{"tasks", m.SetTasksTotal, m.TasksTotal, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set(tt.count)
			assert.Equal(t, float64(tt.count), getGaugeValue(t, tt.gauge))
		})
	}
}

func TestRecordTaskMove(t *testing.T) {
	m := getTestMetrics()

	m.RecordTaskMove("ok", 10*time.Millisecond)
	m.RecordTaskMove("ok", 20*time.Millisecond)
	m.RecordTaskMove("aborted", time.Millisecond)

	assert.Equal(t, float64(2), getCounterValue(t, m.TaskMovesTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), getCounterValue(t, m.TaskMovesTotal.WithLabelValues("aborted")))

	metric := &dto.Metric{}
	assert.NoError(t, m.TaskMoveDuration.(prometheus.Metric).Write(metric))
	assert.Equal(t, uint64(3), metric.Histogram.GetSampleCount())
}

func TestRealtimeCounters(t *testing.T) {
	m := getTestMetrics()

	m.IncrementEventPublished("taskMoved")
	m.IncrementEventDropped()
	m.IncrementRelayFallback()
	m.WSConnected()
	m.WSConnected()
	m.WSDisconnected()

	assert.Equal(t, float64(1), getCounterValue(t, m.EventsPublishedTotal.WithLabelValues("taskMoved")))
	assert.Equal(t, float64(1), getCounterValue(t, m.EventsDroppedTotal))
	assert.Equal(t, float64(1), getCounterValue(t, m.RelayFallbackTotal))
	assert.Equal(t, float64(1), getGaugeValue(t, m.WSConnectionsActive))
}

func TestBusinessMetricsCollector(t *testing.T) {
	db := testutil.NewTestDB(t)
	m := getTestMetrics()

	assert.NoError(t, db.Exec("INSERT INTO boards (id, title, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		"8a1f3c2e-0000-4000-8000-000000000001", "Roadmap", "8a1f3c2e-0000-4000-8000-0000000000ff", time.Now(), time.Now()).Error)

	collector := NewBusinessMetricsCollector(db, m, zap.NewNop(), time.Hour)
	collector.collect()

	assert.Equal(t, float64(1), getGaugeValue(t, m.BoardsTotal))
	assert.Equal(t, float64(0), getGaugeValue(t, m.ListsTotal))
	assert.Equal(t, float64(0), getGaugeValue(t, m.TasksTotal))
}

func TestBusinessMetricsCollector_StartStop(t *testing.T) {
	db := testutil.NewTestDB(t)
	m := getTestMetrics()
	m.SetBoardsTotal(42)

	collector := NewBusinessMetricsCollector(db, m, zap.NewNop(), time.Hour)
	collector.Start()
	collector.Stop()
	collector.Stop()

	// the first pass runs before the first tick
	assert.Equal(t, float64(0), getGaugeValue(t, m.BoardsTotal))
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("Failed to write counter metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		t.Fatalf("Failed to write gauge metric: %v", err)
	}
	return metric.Gauge.GetValue()
}
