package services

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/client"
)

const (
	healthFactorPoints = 20
	recentActivity     = 30 * 24 * time.Hour

	recAddContact       = "Add contact information"
	recFollowUp         = "Schedule follow-up contact"
	recCompleteProfile  = "Complete client profile"
	recIncreasePriority = "Consider increasing priority"
	recReviewStatus     = "Review client status"
)

type HealthFactors struct {
	HasContacts        bool `json:"has_contacts"`
	HasRecentActivity  bool `json:"has_recent_activity"`
	HasCompleteProfile bool `json:"has_complete_profile"`
	HasHighPriority    bool `json:"has_high_priority"`
	HasActiveStatus    bool `json:"has_active_status"`
}

type HealthScore struct {
	ClientID        uuid.UUID     `json:"client_id"`
	ClientName      string        `json:"client_name"`
	HealthScore     int           `json:"health_score"`
	Factors         HealthFactors `json:"factors"`
	Recommendations []string      `json:"recommendations"`
}

// ScoreClient awards 20 points per met factor. Each unmet factor adds its
// recommendation, in factor order.
func ScoreClient(c *types.Client, activeContacts int, now time.Time) HealthScore {
	f := HealthFactors{
		HasContacts:        activeContacts > 0,
		HasRecentActivity:  c.LastContactAt != nil && !c.LastContactAt.Before(now.Add(-recentActivity)),
		HasCompleteProfile: c.HasCompleteProfile(),
		HasHighPriority:    c.Priority == client.PriorityHigh || c.Priority == client.PriorityCritical,
		HasActiveStatus:    c.Status == client.StatusActive,
	}
	out := HealthScore{
		ClientID:        c.ID,
		ClientName:      c.Name,
		Factors:         f,
		Recommendations: []string{},
	}
	for _, factor := range []struct {
		met bool
		rec string
	}{
		{f.HasContacts, recAddContact},
		{f.HasRecentActivity, recFollowUp},
		{f.HasCompleteProfile, recCompleteProfile},
		{f.HasHighPriority, recIncreasePriority},
		{f.HasActiveStatus, recReviewStatus},
	} {
		if factor.met {
			out.HealthScore += healthFactorPoints
		} else {
			out.Recommendations = append(out.Recommendations, factor.rec)
		}
	}
	return out
}
