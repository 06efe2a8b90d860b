package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing packs, versions or bindings.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a pack code is already registered.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is returned by a store when a concurrent writer claimed the same slot.
	ErrConflict = errors.New("conflict")

	// ErrBlocked means the approval sequence already contains a rejection.
	ErrBlocked = errors.New("approval workflow blocked by rejection")
	// ErrWorkflowComplete means every stage has already been approved.
	ErrWorkflowComplete = errors.New("approval workflow already completed")
	ErrStageMismatch    = errors.New("invalid approval stage")
	ErrReleaseNotReady  = errors.New("release not ready")
	ErrValidationFailed = errors.New("content validation failed")
)

// Release readiness reasons.
const (
	ReasonSubmissionRequired = "submission_required"
	ReasonApprovalIncomplete = "approval_incomplete"
)

// StageMismatchError reports the stage the caller should have submitted.
type StageMismatchError struct {
	Expected string
}

func (e *StageMismatchError) Error() string {
	return fmt.Sprintf("%s, expected %s", ErrStageMismatch.Error(), e.Expected)
}

func (e *StageMismatchError) Is(target error) bool { return target == ErrStageMismatch }

func StageMismatch(expected string) error {
	return &StageMismatchError{Expected: expected}
}

type ReleaseNotReadyError struct {
	Reason string
}

func (e *ReleaseNotReadyError) Error() string {
	return ErrReleaseNotReady.Error() + ": " + e.Reason
}

func (e *ReleaseNotReadyError) Is(target error) bool { return target == ErrReleaseNotReady }

func ReleaseNotReady(reason string) error {
	return &ReleaseNotReadyError{Reason: reason}
}

// ValidationFailedError carries the validator issues verbatim.
type ValidationFailedError struct {
	Issues []string
}

func (e *ValidationFailedError) Error() string {
	if len(e.Issues) == 0 {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Issues, "; ")
}

func (e *ValidationFailedError) Is(target error) bool { return target == ErrValidationFailed }

func ValidationFailed(issues []string) error {
	return &ValidationFailedError{Issues: append([]string(nil), issues...)}
}

// Invalid wraps ErrInvalidArgument with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
