package metrics

import (
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "taskflow"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen        prometheus.Gauge
	DBConnectionsInUse       prometheus.Gauge
	DBConnectionsIdle        prometheus.Gauge
	DBConnectionsMax         prometheus.Gauge
	DBConnectionWaitTotal    prometheus.Counter
	DBConnectionWaitDuration prometheus.Counter
	DBQueryDuration          *prometheus.HistogramVec
	DBQueryErrors            *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestDuration *prometheus.HistogramVec
	ExternalAPIRequestsTotal   *prometheus.CounterVec
	ExternalAPIErrors          *prometheus.CounterVec

	// Business metrics
	BoardsTotal       prometheus.Gauge
	ListsTotal        prometheus.Gauge
	TasksTotal        prometheus.Gauge
	BoardCreatedTotal prometheus.Counter
	TaskCreatedTotal  prometheus.Counter
	TaskMovesTotal    *prometheus.CounterVec
	TaskMoveDuration  prometheus.Histogram
	TaskMoveRetries   prometheus.Counter
	ActivityFailures  prometheus.Counter
	CompactedLists    prometheus.Counter

	// Realtime metrics
	EventsPublishedTotal *prometheus.CounterVec
	EventsDroppedTotal   prometheus.Counter
	WSConnectionsActive  prometheus.Gauge
	RelayFallbackTotal   prometheus.Counter

	// Last pool snapshot; WaitCount and WaitDuration are cumulative in sql.DBStats
	dbStatsMu   sync.Mutex
	lastDBStats sql.DBStats

	// Logger for error reporting
	logger *zap.Logger
}

// NewWithLogger creates and registers all metrics with the default registry and a logger
func NewWithLogger(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	http := newFactory(registerer, "http")
	db := newFactory(registerer, "db")
	client := newFactory(registerer, "client")
	board := newFactory(registerer, "board")
	rt := newFactory(registerer, "realtime")

	return &Metrics{
		HTTPRequestsTotal:   http.counterVec("requests_total", "Total number of HTTP requests", "method", "endpoint", "status"),
		HTTPRequestDuration: http.histogramVec("request_duration_seconds", "HTTP request duration in seconds", requestBuckets, "method", "endpoint"),

		DBConnectionsOpen:        db.gauge("connections_open", "Current number of open database connections"),
		DBConnectionsInUse:       db.gauge("connections_in_use", "Current number of in-use database connections"),
		DBConnectionsIdle:        db.gauge("connections_idle", "Current number of idle database connections"),
		DBConnectionsMax:         db.gauge("connections_max", "Maximum number of open database connections configured"),
		DBConnectionWaitTotal:    db.counter("connection_wait_total", "Total number of times a query waited for a pooled connection"),
		DBConnectionWaitDuration: db.counter("connection_wait_seconds_total", "Total time spent waiting for pooled connections"),
		DBQueryDuration:          db.histogramVec("query_duration_seconds", "Database statement duration in seconds", queryBuckets, "operation", "table"),
		DBQueryErrors:            db.counterVec("query_errors_total", "Total number of failed database statements", "operation", "table"),

		ExternalAPIRequestDuration: client.histogramVec("request_duration_seconds", "Board API call duration seconds as seen by the client", requestBuckets, "endpoint", "status"),
		ExternalAPIRequestsTotal:   client.counterVec("requests_total", "Total number of board API calls made by the client", "endpoint", "method", "status"),
		ExternalAPIErrors:          client.counterVec("errors_total", "Total number of failed board API calls by error type", "endpoint", "error_type"),

		BoardsTotal:       board.gauge("boards", "Current number of boards"),
		ListsTotal:        board.gauge("lists", "Current number of lists"),
		TasksTotal:        board.gauge("tasks", "Current number of tasks"),
		BoardCreatedTotal: board.counter("boards_created_total", "Total number of boards created"),
		TaskCreatedTotal:  board.counter("tasks_created_total", "Total number of tasks created"),
		TaskMovesTotal:    board.counterVec("task_moves_total", "Total number of task move attempts by outcome", "outcome"),
		TaskMoveDuration:  board.histogram("task_move_duration_seconds", "Task move transaction duration in seconds", queryBuckets),
		TaskMoveRetries:   board.counter("task_move_retries_total", "Total number of move transactions retried after a serialization failure"),
		ActivityFailures:  board.counter("activity_failures_total", "Total number of activity entries that failed to persist"),
		CompactedLists:    board.counter("compacted_containers_total", "Total number of lists and boards whose positions were compacted"),

		EventsPublishedTotal: rt.counterVec("events_published_total", "Total number of realtime events published by type", "event"),
		EventsDroppedTotal:   rt.counter("events_dropped_total", "Total number of deliveries dropped for full subscriber buffers"),
		WSConnectionsActive:  rt.gauge("connections_active", "Current number of open websocket connections"),
		RelayFallbackTotal:   rt.counter("relay_fallback_total", "Total number of events delivered locally because the redis relay was unavailable"),

		logger: logger,
	}
}

var (
	requestBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	queryBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
)

// factory registers metrics under taskflow_<subsystem>_
type factory struct {
	promauto.Factory
	subsystem string
}

func newFactory(registerer prometheus.Registerer, subsystem string) factory {
	return factory{Factory: promauto.With(registerer), subsystem: subsystem}
}

func (f factory) counter(name, help string) prometheus.Counter {
	return f.NewCounter(prometheus.CounterOpts{Namespace: namespace, Subsystem: f.subsystem, Name: name, Help: help})
}

func (f factory) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Subsystem: f.subsystem, Name: name, Help: help}, labels)
}

func (f factory) gauge(name, help string) prometheus.Gauge {
	return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Subsystem: f.subsystem, Name: name, Help: help})
}

func (f factory) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return f.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Subsystem: f.subsystem, Name: name, Help: help, Buckets: buckets})
}

func (f factory) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Subsystem: f.subsystem, Name: name, Help: help, Buckets: buckets}, labels)
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.Error("Panic in metrics operation",
					zap.String("operation", operation),
					zap.Any("panic", r),
				)
			}
		}
	}()
	fn()
}
