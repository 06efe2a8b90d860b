package testutil

import (
	"errors"
	"os"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/config-center/internal/data/db"
	"github.com/yungbote/config-center/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pgSvc  *db.Service
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.NewWithOptions(logger.Options{Mode: "test", Level: "warn", Redact: true})
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// PostgresDB returns the shared, migrated test database. Tests skip when
// TEST_POSTGRES_DSN is unset.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		pgSvc, pgErr = db.NewPostgresService(dsn, logger.NewNop())
		if pgErr != nil {
			return
		}
		pgErr = pgSvc.Migrate()
	})

	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run relational store integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgSvc.DB()
}

// SQLiteDB opens a private in-memory database with the governance schema.
func SQLiteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	svc, err := db.NewSQLiteService(":memory:", logger.NewNop())
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := svc.Migrate(); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	return svc.DB()
}

// Truncate empties the governance tables so each test starts from a blank
// store on the shared database.
func Truncate(tb testing.TB, gdb *gorm.DB) {
	tb.Helper()
	for _, table := range []string{
		"config_audit_log",
		"release_binding",
		"approval_record",
		"submitted_pack_version",
		"domain_pack_version",
		"domain_pack",
	} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			tb.Fatalf("truncate %s: %v", table, err)
		}
	}
}
