package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record does not exist or is owned by a
// different user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("store: record not found")

// ErrClaimConflict is returned by ClaimSyncing when the connection exists but
// its syncing flag is already held by another pass.
var ErrClaimConflict = errors.New("store: sync already claimed")

// Store wraps the shared Gorm/SQLite handle behind the trade and connection
// repositories.
type Store struct {
	db *gorm.DB
}

// Open initializes the database at path, running migrations. The DSN enables
// WAL and a busy timeout so concurrent HTTP reads do not trip over writer
// locks.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: database path cannot be empty")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	db, err := gorm.Open(sqlite.Open(dsnFor(path)), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&tradeModel{}, &connectionModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep the pool tiny to avoid lock contention while still
	// letting reads overlap the sync writer.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func dsnFor(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared"
	}
	pragmas := strings.Join([]string{
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"cache=shared",
	}, "&")
	return "file:" + path + "?" + pragmas
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying *sql.DB for health checks.
func (s *Store) SQLDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	return s.db.DB()
}

// Trades returns the trade repository.
func (s *Store) Trades() *TradeStore { return &TradeStore{db: s.db} }

// Connections returns the exchange-connection repository.
func (s *Store) Connections() *ConnectionStore { return &ConnectionStore{db: s.db} }
