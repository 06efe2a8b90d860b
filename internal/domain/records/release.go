package records

import (
	"time"

	"github.com/google/uuid"
)

type ReleaseBinding struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PackCode        string    `gorm:"column:pack_code;not null;uniqueIndex:idx_release_binding_env,priority:1" json:"pack_code"`
	Environment     string    `gorm:"column:environment;not null;uniqueIndex:idx_release_binding_env,priority:2" json:"environment"`
	ActiveVersionNo int       `gorm:"column:active_version_no;not null" json:"active_version_no"`
	ReleasedBy      string    `gorm:"column:released_by;not null" json:"released_by"`
	ReleasedAt      time.Time `gorm:"column:released_at;not null" json:"released_at"`
}

func (ReleaseBinding) TableName() string { return "release_binding" }
