package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureClientIndexes(db)
}

// EnsureClientIndexes creates the indexes gorm tags cannot express. The
// statements run unchanged on postgres and sqlite.
func EnsureClientIndexes(db *gorm.DB) error {
	// At most one primary contact per client.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_client_contact_primary
		ON client_contact (client_id)
		WHERE is_primary;
	`).Error; err != nil {
		return fmt.Errorf("create ux_client_contact_primary: %w", err)
	}

	// Org-scoped listings only ever look at live clients.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_client_org_live_status
		ON client (organization_id, status)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_client_org_live_status: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_client_contact_client_active
		ON client_contact (client_id, is_active);
	`).Error; err != nil {
		return fmt.Errorf("create idx_client_contact_client_active: %w", err)
	}
	return nil
}
