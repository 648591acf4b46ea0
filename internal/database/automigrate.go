package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow-board-api/internal/domain"
)

// models are listed parents first so foreign keys resolve on a fresh schema
func models() []interface{} {
	return []interface{}{
		&domain.Board{},
		&domain.BoardMember{},
		&domain.List{},
		&domain.Task{},
		&domain.TaskAssignment{},
		&domain.Activity{},
	}
}

// AutoMigrate creates or updates every board table in one call
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// SafeAutoMigrate migrates one table at a time so a failure names the table
// it stopped at and the log shows which tables were created fresh.
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	created := 0

	for _, model := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		existed := migrator.HasTable(model)
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", table),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}
		if !existed {
			created++
		}
		logger.Debug("Migrated table", zap.String("table", table), zap.Bool("created", !existed))
	}

	logger.Info("Auto-migration completed",
		zap.Int("tables", len(models())),
		zap.Int("created", created),
	)
	return nil
}
