package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessMetricsCollector refreshes the board, list and task gauges on an interval
type BusinessMetricsCollector struct {
	db       *gorm.DB
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration

	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

// NewBusinessMetricsCollector creates a collector. A non-positive interval defaults to one minute.
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &BusinessMetricsCollector{
		db:       db,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start collects once immediately and then on every tick until Stop
func (c *BusinessMetricsCollector) Start() {
	go func() {
		defer close(c.stopped)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop ends collection and waits for an in-flight pass. Safe to call more than once.
func (c *BusinessMetricsCollector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
	<-c.stopped
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for table, set := range map[string]func(int64){
		"boards": c.metrics.SetBoardsTotal,
		"lists":  c.metrics.SetListsTotal,
		"tasks":  c.metrics.SetTasksTotal,
	} {
		var count int64
		if err := c.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			c.logger.Warn("Failed to count rows", zap.String("table", table), zap.Error(err))
			continue
		}
		set(count)
	}
}
