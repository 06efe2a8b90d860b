package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/config-center/internal/domain/records"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&records.DomainPack{},
		&records.DomainPackVersion{},
		&records.SubmittedPackVersion{},
		&records.ApprovalRecord{},
		&records.ReleaseBinding{},
		&records.ConfigAuditLog{},
	)
}

// EnsureGovernanceIndexes re-asserts the uniqueness constraints the governance
// engine depends on. AutoMigrate creates them from struct tags on a fresh
// schema; this covers databases bootstrapped by hand.
func EnsureGovernanceIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_domain_pack_code", `CREATE UNIQUE INDEX IF NOT EXISTS idx_domain_pack_code ON domain_pack (pack_code);`},
		{"idx_domain_pack_version_no", `CREATE UNIQUE INDEX IF NOT EXISTS idx_domain_pack_version_no ON domain_pack_version (pack_code, version_no);`},
		{"idx_approval_record_seq", `CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_record_seq ON approval_record (pack_code, version_no, seq);`},
		{"idx_release_binding_env", `CREATE UNIQUE INDEX IF NOT EXISTS idx_release_binding_env ON release_binding (pack_code, environment);`},
		{"idx_config_audit_log_id", `CREATE UNIQUE INDEX IF NOT EXISTS idx_config_audit_log_id ON config_audit_log (id);`},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *Service) Migrate() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := EnsureGovernanceIndexes(s.db); err != nil {
		return err
	}
	s.log.Info("governance schema ready", "driver", s.driver)
	return nil
}
