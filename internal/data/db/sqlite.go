package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/config-center/internal/platform/logger"
)

// NewSQLiteService opens a single-node durable store. ":memory:" yields a
// private database per connection, so the pool is pinned to one connection.
func NewSQLiteService(path string, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("missing sqlite path")
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_foreign_keys=on"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	serviceLog.Info("opened sqlite", "path", path)
	return &Service{db: db, log: serviceLog, driver: DriverSQLite}, nil
}
