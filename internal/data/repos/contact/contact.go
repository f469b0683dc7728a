package contact

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

type ContactRepo interface {
	Create(dbc dbctx.Context, c *types.ClientContact) (*types.ClientContact, error)
	GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.ClientContact, error)
	ListByClient(dbc dbctx.Context, orgID, clientID uuid.UUID, includeInactive bool) ([]*types.ClientContact, error)
	UpdateFields(dbc dbctx.Context, orgID, id uuid.UUID, updates map[string]interface{}) error
	ClearPrimary(dbc dbctx.Context, orgID, clientID uuid.UUID, exceptID uuid.UUID) (int64, error)
	SetPrimary(dbc dbctx.Context, orgID, id uuid.UUID) (bool, error)
	DeactivateByClient(dbc dbctx.Context, orgID, clientID uuid.UUID) (int64, error)
	Delete(dbc dbctx.Context, orgID, id uuid.UUID) (bool, error)
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (r *contactRepo) Create(dbc dbctx.Context, c *types.ClientContact) (*types.ClientContact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID returns nil when the contact does not exist in orgID.
func (r *contactRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.ClientContact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var out types.ClientContact
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *contactRepo) ListByClient(dbc dbctx.Context, orgID, clientID uuid.UUID, includeInactive bool) ([]*types.ClientContact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.ClientContact{}
	q := transaction.WithContext(dbc.Ctx).
		Where("client_id = ? AND organization_id = ?", clientID, orgID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("is_primary DESC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) UpdateFields(dbc dbctx.Context, orgID, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ClientContact{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(updates).Error
}

// ClearPrimary unsets is_primary on every contact of the client except
// exceptID (uuid.Nil excludes nothing).
func (r *contactRepo) ClearPrimary(dbc dbctx.Context, orgID, clientID uuid.UUID, exceptID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.ClientContact{}).
		Where("client_id = ? AND organization_id = ? AND is_primary = ?", clientID, orgID, true)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	res := q.Updates(map[string]interface{}{
		"is_primary": false,
		"updated_at": time.Now().UTC(),
	})
	return res.RowsAffected, res.Error
}

func (r *contactRepo) SetPrimary(dbc dbctx.Context, orgID, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ClientContact{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(map[string]interface{}{
			"is_primary": true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeactivateByClient flips is_active off on every active contact of the client.
func (r *contactRepo) DeactivateByClient(dbc dbctx.Context, orgID, clientID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ClientContact{}).
		Where("client_id = ? AND organization_id = ? AND is_active = ?", clientID, orgID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *contactRepo) Delete(dbc dbctx.Context, orgID, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&types.ClientContact{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
