package governance

import (
	"encoding/json"
	"strconv"
)

const PackStatusDraft = "draft"

// Pack is a caller-keyed configuration bundle. Its status never leaves draft.
type Pack struct {
	PackCode string `json:"packCode"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// PackVersion is an immutable snapshot of a pack's content.
type PackVersion struct {
	PackCode      string          `json:"packCode"`
	VersionNo     int             `json:"versionNo"`
	SchemaVersion string          `json:"schemaVersion"`
	ChangeNote    string          `json:"changeNote"`
	CreatedBy     string          `json:"createdBy"`
	ContentJSON   json.RawMessage `json:"contentJson"`
}

const SubmissionStatusSubmitted = "submitted"

type SubmittedPackVersion struct {
	PackCode    string `json:"packCode"`
	VersionNo   int    `json:"versionNo"`
	SubmittedBy string `json:"submittedBy"`
	Status      string `json:"status"`
}

type NewPack struct {
	PackCode string
	Name     string
}

type NewPackVersion struct {
	PackCode      string
	SchemaVersion string
	ChangeNote    string
	CreatedBy     string
	ContentJSON   json.RawMessage
}

// VersionKey renders the audit resource id of a pack version ("delivery_ops:1").
func VersionKey(packCode string, versionNo int) string {
	return packCode + ":" + strconv.Itoa(versionNo)
}
