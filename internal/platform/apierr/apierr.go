package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/config-center/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps an engine error onto its HTTP status and code. An *Error passes
// through unchanged; anything outside the taxonomy is a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrAlreadyExists):
		return New(http.StatusConflict, "already_exists", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrStageMismatch):
		return New(http.StatusBadRequest, "stage_mismatch", err)
	case errors.Is(err, pkgerrors.ErrBlocked):
		return New(http.StatusConflict, "blocked", err)
	case errors.Is(err, pkgerrors.ErrWorkflowComplete):
		return New(http.StatusConflict, "workflow_complete", err)
	case errors.Is(err, pkgerrors.ErrReleaseNotReady):
		return New(http.StatusConflict, "release_not_ready", err)
	case errors.Is(err, pkgerrors.ErrValidationFailed):
		return New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "timeout", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
