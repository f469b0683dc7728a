package client

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusProspect = "prospect"
	StatusLead     = "lead"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"

	SourceReferral = "referral"
	SourceWebsite  = "website"
	SourceSocial   = "social"
	SourceColdCall = "cold_call"
	SourceOther    = "other"
)

var (
	Statuses   = []string{StatusActive, StatusInactive, StatusProspect, StatusLead}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	Sources    = []string{SourceReferral, SourceWebsite, SourceSocial, SourceColdCall, SourceOther}
)

var statusColors = map[string]string{
	StatusActive:   "green",
	StatusInactive: "gray",
	StatusProspect: "blue",
	StatusLead:     "yellow",
}

var priorityColors = map[string]string{
	PriorityLow:      "gray",
	PriorityMedium:   "blue",
	PriorityHigh:     "orange",
	PriorityCritical: "red",
}

func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return "gray"
}

func PriorityColor(priority string) string {
	if c, ok := priorityColors[priority]; ok {
		return c
	}
	return "gray"
}

// Client is a business tracked by one organization. Deleting a client only
// stamps DeletedAt/DeletedBy/DeleteReason; gorm's soft-delete scope then hides
// the row from every normal query.
type Client struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID                   `gorm:"type:uuid;not null;index:idx_client_org_created,priority:1;column:organization_id" json:"organization_id"`
	Name           string                      `gorm:"not null;column:name" json:"name"`
	CompanyName    string                      `gorm:"column:company_name" json:"company_name"`
	Website        string                      `gorm:"column:website" json:"website"`
	Description    string                      `gorm:"column:description" json:"description"`
	PrimaryEmail   string                      `gorm:"column:primary_email" json:"primary_email"`
	PrimaryPhone   string                      `gorm:"column:primary_phone" json:"primary_phone"`
	Industry       string                      `gorm:"column:industry;index" json:"industry"`
	CompanySize    string                      `gorm:"column:company_size" json:"company_size"`
	AnnualRevenue  string                      `gorm:"column:annual_revenue" json:"annual_revenue"`
	Status         string                      `gorm:"not null;column:status" json:"status"`
	Priority       string                      `gorm:"not null;column:priority" json:"priority"`
	Source         string                      `gorm:"column:source" json:"source"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	LastContactAt  *time.Time                  `gorm:"column:last_contact_at" json:"last_contact_at,omitempty"`
	CreatedAt      time.Time                   `gorm:"not null;index:idx_client_org_created,priority:2;column:created_at" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null;column:updated_at" json:"updated_at"`

	DeletedAt    gorm.DeletedAt `gorm:"index;column:deleted_at" json:"deleted_at,omitempty"`
	DeletedBy    *uuid.UUID     `gorm:"type:uuid;column:deleted_by" json:"deleted_by,omitempty"`
	DeleteReason *string        `gorm:"column:delete_reason" json:"delete_reason,omitempty"`

	Contacts []ClientContact `gorm:"foreignKey:ClientID" json:"contacts"`
}

func (Client) TableName() string { return "client" }

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasCompleteProfile reports whether company name, primary email and industry
// are all filled in.
func (c *Client) HasCompleteProfile() bool {
	return c.CompanyName != "" && c.PrimaryEmail != "" && c.Industry != ""
}
