package relational

import (
	"testing"

	"github.com/yungbote/config-center/internal/data/repos"
	"github.com/yungbote/config-center/internal/data/repos/storetest"
	"github.com/yungbote/config-center/internal/data/repos/testutil"
)

func TestSQLiteStoreConformance(t *testing.T) {
	storetest.Run(t, storetest.Harness{
		New: func(t *testing.T) repos.Store {
			return New(testutil.SQLiteDB(t), testutil.Logger(t))
		},
		Concurrent: true,
	})
}

func TestPostgresStoreConformance(t *testing.T) {
	storetest.Run(t, storetest.Harness{
		New: func(t *testing.T) repos.Store {
			db := testutil.PostgresDB(t)
			testutil.Truncate(t, db)
			return New(db, testutil.Logger(t))
		},
		Concurrent: true,
	})
}
