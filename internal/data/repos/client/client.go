package client

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

// mutableColumns are overwritten in full by Overwrite, zero values included.
var mutableColumns = []string{
	"name",
	"company_name",
	"website",
	"description",
	"primary_email",
	"primary_phone",
	"industry",
	"company_size",
	"annual_revenue",
	"status",
	"priority",
	"source",
	"tags",
	"updated_at",
}

// ListFilter narrows List. Empty fields do not filter.
type ListFilter struct {
	Status   string
	Priority string
	// Query matches name, company name, primary email or industry,
	// case-insensitively.
	Query string
}

type ClientRepo interface {
	Create(dbc dbctx.Context, c *types.Client) (*types.Client, error)
	GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.Client, error)
	List(dbc dbctx.Context, orgID uuid.UUID, filter ListFilter) ([]*types.Client, error)
	Overwrite(dbc dbctx.Context, c *types.Client) (bool, error)
	SoftDelete(dbc dbctx.Context, orgID, id, deletedBy uuid.UUID, reason *string, at time.Time) (bool, error)
	TouchLastContact(dbc dbctx.Context, orgID, id uuid.UUID, at time.Time) (bool, error)
}

type clientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
	return &clientRepo{db: db, log: baseLog.With("repo", "ClientRepo")}
}

func (r *clientRepo) Create(dbc dbctx.Context, c *types.Client) (*types.Client, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Omit("Contacts").Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID returns the live client with its active contacts, or nil when the
// client is missing, soft-deleted or belongs to another organization.
func (r *clientRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*types.Client, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Client
	if err := withActiveContacts(transaction.WithContext(dbc.Ctx)).
		Where("id = ? AND organization_id = ?", id, orgID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *clientRepo) List(dbc dbctx.Context, orgID uuid.UUID, filter ListFilter) ([]*types.Client, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Client{}
	if orgID == uuid.Nil {
		return out, nil
	}
	q := withActiveContacts(transaction.WithContext(dbc.Ctx)).
		Where("organization_id = ?", orgID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(company_name) LIKE ? ESCAPE '\' OR LOWER(primary_email) LIKE ? ESCAPE '\' OR LOWER(industry) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern,
		)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Overwrite replaces every mutable column of a live client. It reports false
// when no live client matched (id, organization).
func (r *clientRepo) Overwrite(dbc dbctx.Context, c *types.Client) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c == nil || c.ID == uuid.Nil {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Client{}).
		Where("id = ? AND organization_id = ?", c.ID, c.OrganizationID).
		Select(mutableColumns).
		Updates(map[string]interface{}{
			"name":           c.Name,
			"company_name":   c.CompanyName,
			"website":        c.Website,
			"description":    c.Description,
			"primary_email":  c.PrimaryEmail,
			"primary_phone":  c.PrimaryPhone,
			"industry":       c.Industry,
			"company_size":   c.CompanySize,
			"annual_revenue": c.AnnualRevenue,
			"status":         c.Status,
			"priority":       c.Priority,
			"source":         c.Source,
			"tags":           c.Tags,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete stamps the deletion columns on a live client.
func (r *clientRepo) SoftDelete(dbc dbctx.Context, orgID, id, deletedBy uuid.UUID, reason *string, at time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Client{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(map[string]interface{}{
			"deleted_at":    at.UTC(),
			"deleted_by":    deletedBy,
			"delete_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *clientRepo) TouchLastContact(dbc dbctx.Context, orgID, id uuid.UUID, at time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Client{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("last_contact_at", at.UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func withActiveContacts(q *gorm.DB) *gorm.DB {
	return q.Preload("Contacts", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Order("is_primary DESC, created_at ASC")
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
