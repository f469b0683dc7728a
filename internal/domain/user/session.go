package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is one signed-in device. The ip address and user agent recorded here
// are what audit entries attribute a mutation to.
type Session struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	IPAddress            string     `gorm:"column:ip_address" json:"ip_address"`
	UserAgent            string     `gorm:"column:user_agent" json:"user_agent"`
	ActiveOrganizationID *uuid.UUID `gorm:"type:uuid;column:active_organization_id" json:"active_organization_id,omitempty"`
	ExpiresAt            time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	RevokedAt            *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt            time.Time  `gorm:"not null;column:created_at" json:"created_at"`
}

func (Session) TableName() string { return "session" }

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
