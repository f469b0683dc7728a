package org

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Organization is the tenant boundary. Every client, contact and audit row
// carries its id.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Logo      string    `gorm:"column:logo" json:"logo"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updated_at"`

	Members []Member `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

func (Organization) TableName() string { return "organization" }

func (o *Organization) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type Member struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_org_user,priority:1;column:organization_id" json:"organization_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member_org_user,priority:2;index;column:user_id" json:"user_id"`
	Role           string    `gorm:"not null;column:role" json:"role"`
	CreatedAt      time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

func (Member) TableName() string { return "member" }

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
