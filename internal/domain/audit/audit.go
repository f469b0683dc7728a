package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Log is an append-only record of a mutation attempt together with the
// session that made it. Rows are never updated or deleted.
type Log struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Action         string         `gorm:"not null;column:action" json:"action"`
	Resource       *string        `gorm:"column:resource" json:"resource,omitempty"`
	ResourceID     *string        `gorm:"column:resource_id" json:"resource_id,omitempty"`
	Status         string         `gorm:"not null;column:status" json:"status"`
	Message        *string        `gorm:"column:message" json:"message,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	OrganizationID *uuid.UUID     `gorm:"type:uuid;index;column:organization_id" json:"organization_id,omitempty"`
	UserID         *uuid.UUID     `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	IPAddress      string         `gorm:"column:ip_address" json:"ip_address"`
	UserAgent      string         `gorm:"column:user_agent" json:"user_agent"`
	SessionID      *uuid.UUID     `gorm:"type:uuid;column:session_id" json:"session_id,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index;column:created_at" json:"created_at"`
}

func (Log) TableName() string { return "audit_log" }

func (l *Log) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
