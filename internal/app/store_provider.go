package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/config-center/internal/data/db"
	"github.com/yungbote/config-center/internal/data/repos"
	"github.com/yungbote/config-center/internal/data/repos/memory"
	"github.com/yungbote/config-center/internal/data/repos/relational"
	"github.com/yungbote/config-center/internal/platform/logger"
)

type StoreBootstrapErrorCode string

const (
	StoreBootstrapErrorInvalidDriver StoreBootstrapErrorCode = "invalid_driver"
	StoreBootstrapErrorMissingDSN    StoreBootstrapErrorCode = "missing_dsn"
	StoreBootstrapErrorConnectFailed StoreBootstrapErrorCode = "connect_failed"
	StoreBootstrapErrorMigrateFailed StoreBootstrapErrorCode = "migrate_failed"
)

type StoreBootstrapError struct {
	Code   StoreBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *StoreBootstrapError) Error() string {
	if e == nil {
		return "store bootstrap failed"
	}
	return fmt.Sprintf("store bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *StoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// storeHandle pairs the store with whatever owns its connection.
type storeHandle struct {
	Store repos.Store
	DB    *db.Service
}

func (h storeHandle) Close() error {
	var errs []error
	if h.Store != nil {
		errs = append(errs, h.Store.Close())
	}
	if h.DB != nil {
		errs = append(errs, h.DB.Close())
	}
	return errors.Join(errs...)
}

var (
	openPostgres = db.NewPostgresService
	openSQLite   = db.NewSQLiteService
)

func resolveStore(log *logger.Logger, cfg Config) (storeHandle, error) {
	log.Info("Selecting store backend", "driver", cfg.StoreDriver)

	var (
		svc *db.Service
		err error
	)
	switch cfg.StoreDriver {
	case StoreDriverMemory:
		log.Warn("memory store selected; governance state is lost on restart")
		return storeHandle{Store: memory.New(log)}, nil
	case db.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return storeHandle{}, bootstrapFailed(log, StoreBootstrapErrorMissingDSN, cfg.StoreDriver, errors.New("DATABASE_URL is empty"))
		}
		svc, err = openPostgres(cfg.DatabaseURL, log)
	case db.DriverSQLite:
		svc, err = openSQLite(cfg.SQLitePath, log)
	default:
		return storeHandle{}, bootstrapFailed(log, StoreBootstrapErrorInvalidDriver, cfg.StoreDriver, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver))
	}
	if err != nil {
		return storeHandle{}, bootstrapFailed(log, StoreBootstrapErrorConnectFailed, cfg.StoreDriver, err)
	}
	if err := svc.Migrate(); err != nil {
		_ = svc.Close()
		return storeHandle{}, bootstrapFailed(log, StoreBootstrapErrorMigrateFailed, cfg.StoreDriver, err)
	}
	return storeHandle{Store: relational.New(svc.DB(), log), DB: svc}, nil
}

func bootstrapFailed(log *logger.Logger, code StoreBootstrapErrorCode, driver string, cause error) error {
	err := &StoreBootstrapError{Code: code, Driver: driver, Cause: cause}
	log.Error("Store bootstrap failed", "driver", driver, "error_code", code, "error", cause)
	return err
}
