package metrics

import (
	"database/sql"
	"time"
)

// UpdateDBStats publishes a connection pool snapshot. The wait counters only
// grow by the difference from the previous snapshot.
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.safeExecute("UpdateDBStats", func() {
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))

		m.dbStatsMu.Lock()
		prev := m.lastDBStats
		m.lastDBStats = stats
		m.dbStatsMu.Unlock()

		// A reopened pool restarts its counters
		if stats.WaitCount >= prev.WaitCount {
			m.DBConnectionWaitTotal.Add(float64(stats.WaitCount - prev.WaitCount))
		}
		if stats.WaitDuration >= prev.WaitDuration {
			m.DBConnectionWaitDuration.Add((stats.WaitDuration - prev.WaitDuration).Seconds())
		}
	})
}

// RecordDBQuery records one statement issued through gorm. operation is one
// of select, insert, update, delete or raw.
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
		if err != nil {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}
