package db

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shikho/dynqr/internal/models"
)

var conn *gorm.DB

// DSN builds the sqlite DSN for path. An empty path or ":memory:" gives a
// shared in-memory database that lives as long as the process.
func DSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// Init opens the store at path, migrates it and keeps it as the process-wide
// connection returned by Conn.
func Init(path string, log zerolog.Logger) error {
	gdb, err := Open(DSN(path), log)
	if err != nil {
		return err
	}
	conn = gdb
	log.Info().Str("path", path).Msg("database ready (sqlite)")
	return nil
}

// Open opens and migrates a sqlite database.
func Open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(&log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates or updates every table.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.QRCode{},
		&models.Mapping{},
		&models.QuizMapping{},
		&models.Quiz{},
		&models.Question{},
		&models.Viewer{},
		&models.Entitlement{},
		&models.ScanEvent{},
	); err != nil {
		return err
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	if err := gdb.Exec("CREATE INDEX IF NOT EXISTS idx_mapping_order ON mappings(qr_code_id, position)").Error; err != nil {
		return err
	}
	return gdb.Exec("CREATE INDEX IF NOT EXISTS idx_question_order ON questions(quiz_id, position)").Error
}

func Conn() *gorm.DB {
	return conn
}
