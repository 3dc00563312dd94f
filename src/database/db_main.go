package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tradeconsole/src/model"
)

// JournalDB is the embedded order-journal database. The journal file is the
// single source of truth for order history and is only written through the
// router path.
var JournalDB *gorm.DB

// InitJournalDB opens (or creates) the SQLite journal and migrates the
// orders table. Call once at startup before routing anything.
func InitJournalDB() error {
	config := GetConfig()
	return InitJournalDBAt(config.JournalPath, config.GormLogLevel)
}

// InitJournalDBAt opens the journal at an explicit path. Used directly by
// tests with an in-memory DSN.
func InitJournalDBAt(path string, gormLogLevel int) error {
	db, err := OpenJournal(path, gormLogLevel)
	if err != nil {
		return err
	}

	JournalDB = db
	logrus.WithField("journal", path).Info("[database] order journal ready")
	return nil
}

// OpenJournal opens a journal database without touching the package global.
func OpenJournal(path string, gormLogLevel int) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(gormLogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open order journal: %w", err)
	}

	if err := db.AutoMigrate(&model.Order{}); err != nil {
		return nil, fmt.Errorf("failed to migrate order journal: %w", err)
	}

	return db, nil
}
