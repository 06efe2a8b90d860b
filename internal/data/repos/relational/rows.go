package relational

import (
	"encoding/json"
	"fmt"

	types "github.com/yungbote/config-center/internal/domain"
	"github.com/yungbote/config-center/internal/domain/governance"
	"github.com/yungbote/config-center/internal/domain/records"
)

// Row mappers re-canonicalize JSON columns and normalize times to UTC so the
// output matches the memory store byte for byte (jsonb reorders keys).

func packFromRow(row *records.DomainPack) *types.Pack {
	return &types.Pack{PackCode: row.PackCode, Name: row.Name, Status: row.Status}
}

func versionFromRow(row *records.DomainPackVersion) (*types.PackVersion, error) {
	content, err := governance.CanonicalJSON(row.ContentJSON)
	if err != nil {
		return nil, fmt.Errorf("decode content_json %s: %w", governance.VersionKey(row.PackCode, row.VersionNo), err)
	}
	return &types.PackVersion{
		PackCode:      row.PackCode,
		VersionNo:     row.VersionNo,
		SchemaVersion: row.SchemaVersion,
		ChangeNote:    row.ChangeNote,
		CreatedBy:     row.CreatedBy,
		ContentJSON:   content,
	}, nil
}

func submissionFromRow(row *records.SubmittedPackVersion) *types.SubmittedPackVersion {
	return &types.SubmittedPackVersion{
		PackCode:    row.PackCode,
		VersionNo:   row.VersionNo,
		SubmittedBy: row.SubmittedBy,
		Status:      governance.SubmissionStatusSubmitted,
	}
}

func approvalFromRow(row *records.ApprovalRecord) *types.ApprovalRecord {
	return &types.ApprovalRecord{
		Stage:      types.Stage(row.Stage),
		Decision:   types.Decision(row.Decision),
		Comment:    row.Comment,
		Reviewer:   row.Reviewer,
		ReviewedAt: row.ReviewedAt.UTC(),
	}
}

func bindingFromRow(row *records.ReleaseBinding) *types.ReleaseBinding {
	return &types.ReleaseBinding{
		PackCode:        row.PackCode,
		Environment:     types.Environment(row.Environment),
		ActiveVersionNo: row.ActiveVersionNo,
		ReleasedBy:      row.ReleasedBy,
	}
}

func auditFromRow(row *records.ConfigAuditLog) (*types.AuditLogRecord, error) {
	before, err := snapshotFromColumn(row.BeforeJSON)
	if err != nil {
		return nil, fmt.Errorf("decode before_json %s: %w", row.ID, err)
	}
	after, err := snapshotFromColumn(row.AfterJSON)
	if err != nil {
		return nil, fmt.Errorf("decode after_json %s: %w", row.ID, err)
	}
	return &types.AuditLogRecord{
		ID:           row.ID,
		Actor:        row.Actor,
		Action:       row.Action,
		ResourceType: row.ResourceType,
		ResourceID:   row.ResourceID,
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

func snapshotFromColumn(col []byte) (json.RawMessage, error) {
	if len(col) == 0 {
		return nil, nil
	}
	out, err := governance.CanonicalJSON(col)
	if err != nil {
		return nil, err
	}
	if string(out) == "null" {
		return nil, nil
	}
	return out, nil
}
