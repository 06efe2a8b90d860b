package relational

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
)

func TestMapErrorUniqueViolation(t *testing.T) {
	cases := []error{
		gorm.ErrDuplicatedKey,
		fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
		errors.New("UNIQUE constraint failed: domain_pack.pack_code"),
		errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"),
	}
	for _, in := range cases {
		if got := mapError("create pack", in, pkgerrors.ErrAlreadyExists); !errors.Is(got, pkgerrors.ErrAlreadyExists) {
			t.Fatalf("mapError(%v): want=ErrAlreadyExists got=%v", in, got)
		}
	}
}

func TestMapErrorPassThrough(t *testing.T) {
	if got := mapError("op", pkgerrors.ErrNotFound, pkgerrors.ErrConflict); !errors.Is(got, pkgerrors.ErrNotFound) {
		t.Fatalf("sentinel: want=ErrNotFound got=%v", got)
	}
	if got := mapError("op", context.Canceled, nil); !errors.Is(got, context.Canceled) {
		t.Fatalf("canceled: want=context.Canceled got=%v", got)
	}
	raw := errors.New("connection refused")
	got := mapError("create pack", raw, pkgerrors.ErrAlreadyExists)
	if !errors.Is(got, raw) || got.Error() != "create pack: connection refused" {
		t.Fatalf("backend fault: got=%v", got)
	}
	if got := mapError("op", nil, nil); got != nil {
		t.Fatalf("nil: want=nil got=%v", got)
	}
}
