package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

type GroupColumn string

const (
	GroupByStatus   GroupColumn = "status"
	GroupByPriority GroupColumn = "priority"
	GroupByIndustry GroupColumn = "industry"
)

// ClientFilter narrows client counts. Zero values do not filter. Soft-deleted
// clients are always excluded.
type ClientFilter struct {
	Status   string
	Priority string
	Industry string
	// CreatedFrom is inclusive, CreatedBefore exclusive.
	CreatedFrom      *time.Time
	CreatedBefore    *time.Time
	HasActiveContact *bool
}

// ContactFilter narrows contact counts. Contacts of soft-deleted clients are
// always excluded.
type ContactFilter struct {
	ActiveOnly  bool
	PrimaryOnly bool
	WithEmail   bool
	WithPhone   bool
	Industry    string
}

type GroupCount struct {
	Key   string `gorm:"column:group_key"`
	Count int64  `gorm:"column:group_count"`
}

type AnalyticsRepo interface {
	CountClients(dbc dbctx.Context, orgID uuid.UUID, f ClientFilter) (int64, error)
	CountContacts(dbc dbctx.Context, orgID uuid.UUID, f ContactFilter) (int64, error)
	// GroupClients counts live clients per value of column, ordered by value.
	// Grouping by industry skips clients without one. A non-empty industry
	// restricts the grouping to that industry.
	GroupClients(dbc dbctx.Context, orgID uuid.UUID, column GroupColumn, industry string) ([]GroupCount, error)
}

type analyticsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) AnalyticsRepo {
	return &analyticsRepo{db: db, log: baseLog.With("repo", "AnalyticsRepo")}
}

func (r *analyticsRepo) CountClients(dbc dbctx.Context, orgID uuid.UUID, f ClientFilter) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Client{}).
		Where("client.organization_id = ?", orgID)
	if f.Status != "" {
		q = q.Where("client.status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("client.priority = ?", f.Priority)
	}
	if f.Industry != "" {
		q = q.Where("client.industry = ?", f.Industry)
	}
	if f.CreatedFrom != nil {
		q = q.Where("client.created_at >= ?", f.CreatedFrom.UTC())
	}
	if f.CreatedBefore != nil {
		q = q.Where("client.created_at < ?", f.CreatedBefore.UTC())
	}
	if f.HasActiveContact != nil {
		exists := "EXISTS (SELECT 1 FROM client_contact cc WHERE cc.client_id = client.id AND cc.is_active = ?)"
		if !*f.HasActiveContact {
			exists = "NOT " + exists
		}
		q = q.Where(exists, true)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}

func (r *analyticsRepo) CountContacts(dbc dbctx.Context, orgID uuid.UUID, f ContactFilter) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.ClientContact{}).
		Joins("JOIN client ON client.id = client_contact.client_id AND client.deleted_at IS NULL").
		Where("client_contact.organization_id = ?", orgID)
	if f.ActiveOnly {
		q = q.Where("client_contact.is_active = ?", true)
	}
	if f.PrimaryOnly {
		q = q.Where("client_contact.is_primary = ?", true)
	}
	if f.WithEmail {
		q = q.Where("client_contact.email IS NOT NULL AND client_contact.email <> ''")
	}
	if f.WithPhone {
		q = q.Where("client_contact.phone IS NOT NULL AND client_contact.phone <> ''")
	}
	if f.Industry != "" {
		q = q.Where("client.industry = ?", f.Industry)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return count, nil
}

func (r *analyticsRepo) GroupClients(dbc dbctx.Context, orgID uuid.UUID, column GroupColumn, industry string) ([]GroupCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	switch column {
	case GroupByStatus, GroupByPriority, GroupByIndustry:
	default:
		return nil, fmt.Errorf("unsupported group column %q", column)
	}
	col := "client." + string(column)
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Client{}).
		Select(col+" AS group_key, COUNT(*) AS group_count").
		Where("client.organization_id = ?", orgID)
	if column == GroupByIndustry {
		q = q.Where("client.industry IS NOT NULL AND client.industry <> ''")
	}
	if industry != "" {
		q = q.Where("client.industry = ?", industry)
	}
	out := []GroupCount{}
	if err := q.Group(col).Order(col).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("group clients by %s: %w", column, err)
	}
	return out, nil
}
