package client

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContactMethodEmail = "email"
	ContactMethodPhone = "phone"
	ContactMethodSMS   = "sms"
)

// ClientContact is a person at a client. Contacts are hard deleted. At most one
// contact per client has IsPrimary set; the partial unique index
// ux_client_contact_primary backs that up at the database level.
type ClientContact struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID               uuid.UUID `gorm:"type:uuid;not null;index;column:client_id" json:"client_id"`
	OrganizationID         uuid.UUID `gorm:"type:uuid;not null;index;column:organization_id" json:"organization_id"`
	FirstName              string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName               string    `gorm:"not null;column:last_name" json:"last_name"`
	Email                  string    `gorm:"column:email" json:"email"`
	Phone                  string    `gorm:"column:phone" json:"phone"`
	Position               string    `gorm:"column:position" json:"position"`
	Department             string    `gorm:"column:department" json:"department"`
	PreferredContactMethod string    `gorm:"column:preferred_contact_method" json:"preferred_contact_method"`
	Timezone               string    `gorm:"column:timezone" json:"timezone"`
	IsPrimary              bool      `gorm:"not null;column:is_primary" json:"is_primary"`
	IsActive               bool      `gorm:"not null;column:is_active" json:"is_active"`
	CreatedAt              time.Time `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt              time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
}

func (ClientContact) TableName() string { return "client_contact" }

func (c *ClientContact) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *ClientContact) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
