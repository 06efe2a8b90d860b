package governance

import (
	"encoding/json"
	"time"
)

const (
	ActionPackVersionSubmitted  = "pack_version.submitted"
	ActionApprovalRecordCreated = "approval_record.created"
	ResourceTypePackVersion     = "pack_version"
	ResourceTypeApprovalRecord  = "approval_record"
)

// AuditLogRecord is immutable once written.
type AuditLogRecord struct {
	ID           string          `json:"id"`
	Actor        string          `json:"actor"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resourceType"`
	ResourceID   string          `json:"resourceId"`
	BeforeJSON   json.RawMessage `json:"beforeJson,omitempty"`
	AfterJSON    json.RawMessage `json:"afterJson,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// AuditEntry is the caller-supplied part of an audit record.
type AuditEntry struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	BeforeJSON   json.RawMessage
	AfterJSON    json.RawMessage
}
