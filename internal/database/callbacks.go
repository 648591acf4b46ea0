package database

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats sql.DBStats)
}

const queryStartKey = "metrics:query_start_time"

type registerFunc func(name string, fn func(*gorm.DB)) error

// RegisterMetricsCallbacks registers GORM callbacks that time every query, create,
// update, delete and raw statement and report them to recorder
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) {
	cb := db.Callback()
	hooks := []struct {
		before    registerFunc
		after     registerFunc
		operation string
	}{
		{cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "select"},
		{cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "insert"},
		{cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "update"},
		{cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "delete"},
		{cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, "raw"},
	}

	for _, h := range hooks {
		operation := h.operation
		_ = h.before("metrics:"+operation+"_before", func(tx *gorm.DB) {
			tx.InstanceSet(queryStartKey, time.Now())
		})
		_ = h.after("metrics:"+operation+"_after", func(tx *gorm.DB) {
			startTime, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(startTime.(time.Time)), tx.Error)
		})
	}
}

// StartDBStatsCollector starts periodic DB stats collection
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder, interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-done:
				return
			}
		}
	}()

	return done
}
