package audit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

// AuditLogRepo only appends. There is deliberately no update or delete path.
type AuditLogRepo interface {
	Create(dbc dbctx.Context, entry *types.AuditLog) error
	ListByOrganization(dbc dbctx.Context, orgID uuid.UUID, limit int) ([]*types.AuditLog, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(dbc dbctx.Context, entry *types.AuditLog) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if entry == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(entry).Error
}

// ListByOrganization returns the newest entries first.
func (r *auditLogRepo) ListByOrganization(dbc dbctx.Context, orgID uuid.UUID, limit int) ([]*types.AuditLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	out := []*types.AuditLog{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
