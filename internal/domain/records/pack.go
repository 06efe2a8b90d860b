package records

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DomainPack struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PackCode  string    `gorm:"column:pack_code;not null;uniqueIndex:idx_domain_pack_code" json:"pack_code"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Status    string    `gorm:"column:status;not null" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DomainPack) TableName() string { return "domain_pack" }

type DomainPackVersion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PackCode      string         `gorm:"column:pack_code;not null;uniqueIndex:idx_domain_pack_version_no,priority:1" json:"pack_code"`
	VersionNo     int            `gorm:"column:version_no;not null;uniqueIndex:idx_domain_pack_version_no,priority:2" json:"version_no"`
	SchemaVersion string         `gorm:"column:schema_version;not null" json:"schema_version"`
	ChangeNote    string         `gorm:"column:change_note" json:"change_note"`
	CreatedBy     string         `gorm:"column:created_by;not null" json:"created_by"`
	ContentJSON   datatypes.JSON `gorm:"column:content_json" json:"content_json"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (DomainPackVersion) TableName() string { return "domain_pack_version" }

// SubmittedPackVersion holds at most one row per version; resubmission overwrites it.
type SubmittedPackVersion struct {
	PackCode    string    `gorm:"column:pack_code;primaryKey" json:"pack_code"`
	VersionNo   int       `gorm:"column:version_no;primaryKey" json:"version_no"`
	SubmittedBy string    `gorm:"column:submitted_by;not null" json:"submitted_by"`
	SubmittedAt time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`
}

func (SubmittedPackVersion) TableName() string { return "submitted_pack_version" }
