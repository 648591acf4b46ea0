package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-board-api/internal/config"
	"taskflow-board-api/internal/domain"
)

func TestNew_SQLite(t *testing.T) {
	db, err := New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:newtest?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	require.NoError(t, SafeAutoMigrate(db, zap.NewNop()))
	assert.True(t, db.Migrator().HasTable(&domain.Task{}))
	// a second pass only updates
	require.NoError(t, SafeAutoMigrate(db, zap.NewNop()))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), config.DatabaseConfig{Driver: "mysql"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}
