package records

import (
	"time"

	"gorm.io/datatypes"
)

// ConfigAuditLog is insert-only. Seq gives the global creation order.
type ConfigAuditLog struct {
	Seq          int64          `gorm:"column:seq;primaryKey;autoIncrement" json:"seq"`
	ID           string         `gorm:"column:id;not null;uniqueIndex:idx_config_audit_log_id" json:"id"`
	Actor        string         `gorm:"column:actor;not null" json:"actor"`
	Action       string         `gorm:"column:action;not null;index" json:"action"`
	ResourceType string         `gorm:"column:resource_type;not null" json:"resource_type"`
	ResourceID   string         `gorm:"column:resource_id;not null;index" json:"resource_id"`
	BeforeJSON   datatypes.JSON `gorm:"column:before_json" json:"before_json,omitempty"`
	AfterJSON    datatypes.JSON `gorm:"column:after_json" json:"after_json,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (ConfigAuditLog) TableName() string { return "config_audit_log" }
