package org

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

type OrganizationRepo interface {
	Create(dbc dbctx.Context, o *types.Organization) (*types.Organization, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error)
	SlugExists(dbc dbctx.Context, slug string) (bool, error)
	AddMember(dbc dbctx.Context, m *types.Member) (*types.Member, error)
	IsMember(dbc dbctx.Context, orgID, userID uuid.UUID) (bool, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Organization, error)
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) Create(dbc dbctx.Context, o *types.Organization) (*types.Organization, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if o == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Omit("Members").Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func (r *organizationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Organization
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *organizationRepo) SlugExists(dbc dbctx.Context, slug string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Organization{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *organizationRepo) AddMember(dbc dbctx.Context, m *types.Member) (*types.Member, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if m == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *organizationRepo) IsMember(dbc dbctx.Context, orgID, userID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if orgID == uuid.Nil || userID == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Member{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForUser returns every organization userID belongs to, members included.
func (r *organizationRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Organization, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Organization{}
	if userID == uuid.Nil {
		return out, nil
	}
	sub := transaction.Model(&types.Member{}).Select("organization_id").Where("user_id = ?", userID)
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Members").
		Where("id IN (?)", sub).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
