package records

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRecord rows are append-only. Seq is the position in the stage order;
// the unique (pack_code, version_no, seq) index is the cross-process
// serialization point for concurrent reviewers.
type ApprovalRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PackCode   string    `gorm:"column:pack_code;not null;uniqueIndex:idx_approval_record_seq,priority:1" json:"pack_code"`
	VersionNo  int       `gorm:"column:version_no;not null;uniqueIndex:idx_approval_record_seq,priority:2" json:"version_no"`
	Seq        int       `gorm:"column:seq;not null;uniqueIndex:idx_approval_record_seq,priority:3" json:"seq"`
	Stage      string    `gorm:"column:stage;not null" json:"stage"`
	Decision   string    `gorm:"column:decision;not null" json:"decision"`
	Comment    string    `gorm:"column:comment" json:"comment"`
	Reviewer   string    `gorm:"column:reviewer;not null" json:"reviewer"`
	ReviewedAt time.Time `gorm:"column:reviewed_at;not null" json:"reviewed_at"`
}

func (ApprovalRecord) TableName() string { return "approval_record" }
