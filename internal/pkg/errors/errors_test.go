package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{StageMismatch("hr_review"), ErrStageMismatch},
		{ReleaseNotReady(ReasonSubmissionRequired), ErrReleaseNotReady},
		{ValidationFailed([]string{"id: is required"}), ErrValidationFailed},
		{Invalid("versionNo must be >= %d", 1), ErrInvalidArgument},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("op: %w", tc.err)
		if !errors.Is(wrapped, tc.want) {
			t.Fatalf("errors.Is(%v, %v): want=true", wrapped, tc.want)
		}
	}
}

func TestTypedErrorsCarryData(t *testing.T) {
	var mismatch *StageMismatchError
	if !errors.As(fmt.Errorf("x: %w", StageMismatch("business_review")), &mismatch) || mismatch.Expected != "business_review" {
		t.Fatalf("StageMismatchError: got=%+v", mismatch)
	}
	if got := StageMismatch("hr_review").Error(); got != "invalid approval stage, expected hr_review" {
		t.Fatalf("message: got=%q", got)
	}
	if got := ReleaseNotReady(ReasonApprovalIncomplete).Error(); got != "release not ready: approval_incomplete" {
		t.Fatalf("message: got=%q", got)
	}
}

func TestValidationFailedCopiesIssues(t *testing.T) {
	issues := []string{"a: is required"}
	err := ValidationFailed(issues)
	issues[0] = "changed"
	var vf *ValidationFailedError
	if !errors.As(err, &vf) || vf.Issues[0] != "a: is required" {
		t.Fatalf("issues: got=%v", vf.Issues)
	}
	if ValidationFailed(nil).Error() != "content validation failed" {
		t.Fatalf("empty issues message: got=%q", ValidationFailed(nil).Error())
	}
}
