package relational

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
)

// isUniqueViolation covers gorm's translated error, a raw pgconn error, and
// driver messages that lost their type on the way up.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed")
}

// mapError maps a write failure onto the store error taxonomy. onUnique is the
// sentinel a uniqueness violation means for this operation.
func mapError(op string, err error, onUnique error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound),
		errors.Is(err, pkgerrors.ErrAlreadyExists),
		errors.Is(err, pkgerrors.ErrConflict),
		errors.Is(err, pkgerrors.ErrInvalidArgument):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case onUnique != nil && isUniqueViolation(err):
		return onUnique
	}
	return &opError{op: op, err: err}
}

type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return e.op + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }
