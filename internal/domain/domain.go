package domain

import (
	"github.com/yungbote/config-center/internal/domain/governance"
)

const (
	ActionPackVersionSubmitted  = governance.ActionPackVersionSubmitted
	ActionApprovalRecordCreated = governance.ActionApprovalRecordCreated
)

type Pack = governance.Pack
type NewPack = governance.NewPack
type PackVersion = governance.PackVersion
type NewPackVersion = governance.NewPackVersion
type SubmittedPackVersion = governance.SubmittedPackVersion

type Stage = governance.Stage
type Decision = governance.Decision
type ApprovalRecord = governance.ApprovalRecord
type NewApproval = governance.NewApproval
type WorkflowState = governance.WorkflowState

type Environment = governance.Environment
type ReleaseBinding = governance.ReleaseBinding
type ReleaseRequest = governance.ReleaseRequest
type ValidationResult = governance.ValidationResult
type ActivePack = governance.ActivePack

type AuditLogRecord = governance.AuditLogRecord
type AuditEntry = governance.AuditEntry
