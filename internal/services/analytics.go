package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	"github.com/yungbote/clientbase-backend/internal/data/repos/analytics"
	"github.com/yungbote/clientbase-backend/internal/domain/client"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/pkg/pointers"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	defaultGrowthMonths = 12
	maxGrowthMonths     = 60
	analyticsFanOut     = 4
	growthLabelLayout   = "Jan 06"
	unknownGroup        = "unknown"
)

type OverviewMetrics struct {
	TotalClients                int64   `json:"total_clients"`
	ActiveClients               int64   `json:"active_clients"`
	NewClientsThisMonth         int64   `json:"new_clients_this_month"`
	ClientsAddedLastMonth       int64   `json:"clients_added_last_month"`
	AverageContactsPerClient    float64 `json:"average_contacts_per_client"`
	ClientsWithNoContacts       int64   `json:"clients_with_no_contacts"`
	ClientsWithHighPriority     int64   `json:"clients_with_high_priority"`
	ClientsWithCriticalPriority int64   `json:"clients_with_critical_priority"`
}

type StatusShare struct {
	Status     string `json:"status"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

type PriorityShare struct {
	Priority   string `json:"priority"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

type GrowthPoint struct {
	Month        string `json:"month"`
	NewClients   int64  `json:"new_clients"`
	TotalClients int64  `json:"total_clients"`
	GrowthRate   int    `json:"growth_rate"`
}

type IndustryBreakdown struct {
	Industry        string  `json:"industry"`
	Count           int64   `json:"count"`
	Percentage      int     `json:"percentage"`
	AverageContacts float64 `json:"average_contacts"`
	TopStatus       string  `json:"top_status"`
	TopPriority     string  `json:"top_priority"`
}

type ContactEngagement struct {
	TotalContacts            int64   `json:"total_contacts"`
	ActiveContacts           int64   `json:"active_contacts"`
	PrimaryContacts          int64   `json:"primary_contacts"`
	ContactsWithEmail        int64   `json:"contacts_with_email"`
	ContactsWithPhone        int64   `json:"contacts_with_phone"`
	AverageContactsPerClient float64 `json:"average_contacts_per_client"`
	ClientsWithContacts      int64   `json:"clients_with_contacts"`
}

type Dashboard struct {
	Overview     *OverviewMetrics    `json:"overview"`
	Status       []StatusShare       `json:"status_distribution"`
	Priority     []PriorityShare     `json:"priority_distribution"`
	Growth       []GrowthPoint       `json:"growth_trends"`
	Industries   []IndustryBreakdown `json:"industry_analysis"`
	Engagement   *ContactEngagement  `json:"contact_engagement"`
	HealthScores []HealthScore       `json:"health_scores"`
}

// AnalyticsService answers read-only reports over one organization's live
// clients. Queries of one report run concurrently on the base handle, never
// on a shared transaction.
type AnalyticsService interface {
	Overview(ctx context.Context, orgID uuid.UUID) (*OverviewMetrics, error)
	StatusDistribution(ctx context.Context, orgID uuid.UUID) ([]StatusShare, error)
	PriorityDistribution(ctx context.Context, orgID uuid.UUID) ([]PriorityShare, error)
	GrowthTrends(ctx context.Context, orgID uuid.UUID, months int) ([]GrowthPoint, error)
	IndustryAnalysis(ctx context.Context, orgID uuid.UUID) ([]IndustryBreakdown, error)
	ContactEngagement(ctx context.Context, orgID uuid.UUID) (*ContactEngagement, error)
	HealthScores(ctx context.Context, orgID uuid.UUID, now time.Time) ([]HealthScore, error)
	Dashboard(ctx context.Context, orgID uuid.UUID) (*Dashboard, error)
}

type analyticsService struct {
	log        *logger.Logger
	repo       repos.AnalyticsRepo
	clientRepo repos.ClientRepo
	now        func() time.Time
	loc        *time.Location
}

func NewAnalyticsService(log *logger.Logger, repo repos.AnalyticsRepo, clientRepo repos.ClientRepo) AnalyticsService {
	return &analyticsService{
		log:        log.With("service", "AnalyticsService"),
		repo:       repo,
		clientRepo: clientRepo,
		now:        time.Now,
		loc:        time.Local,
	}
}

// monthStart returns the first instant of the month offset months away from
// t's month, in the server's zone.
func (s *analyticsService) monthStart(t time.Time, offset int) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, s.loc)
}

func (s *analyticsService) Overview(ctx context.Context, orgID uuid.UUID) (*OverviewMetrics, error) {
	now := s.now()
	thisMonth := s.monthStart(now, 0)
	lastMonth := s.monthStart(now, -1)

	out := &OverviewMetrics{}
	var activeContacts int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyticsFanOut)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{}, &out.TotalClients)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{Status: client.StatusActive}, &out.ActiveClients)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{CreatedFrom: &thisMonth}, &out.NewClientsThisMonth)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{CreatedFrom: &lastMonth, CreatedBefore: &thisMonth}, &out.ClientsAddedLastMonth)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{HasActiveContact: pointers.Ptr(false)}, &out.ClientsWithNoContacts)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{Priority: client.PriorityHigh}, &out.ClientsWithHighPriority)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{Priority: client.PriorityCritical}, &out.ClientsWithCriticalPriority)
	s.countContacts(g, gctx, orgID, analytics.ContactFilter{ActiveOnly: true}, &activeContacts)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	out.AverageContactsPerClient = ratio(activeContacts, out.TotalClients)
	return out, nil
}

func (s *analyticsService) StatusDistribution(ctx context.Context, orgID uuid.UUID) ([]StatusShare, error) {
	groups, err := s.repo.GroupClients(dbctx.New(ctx), orgID, analytics.GroupByStatus, "")
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	total := sumCounts(groups)
	out := make([]StatusShare, 0, len(groups))
	for _, g := range groups {
		out = append(out, StatusShare{
			Status:     g.Key,
			Count:      g.Count,
			Percentage: percentage(g.Count, total),
			Color:      client.StatusColor(g.Key),
		})
	}
	return out, nil
}

func (s *analyticsService) PriorityDistribution(ctx context.Context, orgID uuid.UUID) ([]PriorityShare, error) {
	groups, err := s.repo.GroupClients(dbctx.New(ctx), orgID, analytics.GroupByPriority, "")
	if err != nil {
		return nil, fmt.Errorf("priority distribution: %w", err)
	}
	total := sumCounts(groups)
	out := make([]PriorityShare, 0, len(groups))
	for _, g := range groups {
		out = append(out, PriorityShare{
			Priority:   g.Key,
			Count:      g.Count,
			Percentage: percentage(g.Count, total),
			Color:      client.PriorityColor(g.Key),
		})
	}
	return out, nil
}

// GrowthTrends covers the trailing months calendar months, oldest first. Each
// month is the half-open interval [first day, first day of next month).
func (s *analyticsService) GrowthTrends(ctx context.Context, orgID uuid.UUID, months int) ([]GrowthPoint, error) {
	if months <= 0 {
		months = defaultGrowthMonths
	}
	if months > maxGrowthMonths {
		months = maxGrowthMonths
	}
	now := s.now()
	out := make([]GrowthPoint, months)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyticsFanOut)
	for i := range out {
		start := s.monthStart(now, i-(months-1))
		end := s.monthStart(now, i-(months-1)+1)
		out[i].Month = start.Format(growthLabelLayout)
		s.countClients(g, gctx, orgID, analytics.ClientFilter{CreatedFrom: &start, CreatedBefore: &end}, &out[i].NewClients)
		s.countClients(g, gctx, orgID, analytics.ClientFilter{CreatedBefore: &end}, &out[i].TotalClients)
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("growth trends: %w", err)
	}
	for i := 1; i < len(out); i++ {
		out[i].GrowthRate = growthRate(out[i-1].TotalClients, out[i].TotalClients)
	}
	return out, nil
}

func (s *analyticsService) IndustryAnalysis(ctx context.Context, orgID uuid.UUID) ([]IndustryBreakdown, error) {
	groups, err := s.repo.GroupClients(dbctx.New(ctx), orgID, analytics.GroupByIndustry, "")
	if err != nil {
		return nil, fmt.Errorf("industry analysis: %w", err)
	}
	total := sumCounts(groups)
	out := make([]IndustryBreakdown, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyticsFanOut)
	for i, grp := range groups {
		i, grp := i, grp
		out[i] = IndustryBreakdown{
			Industry:   grp.Key,
			Count:      grp.Count,
			Percentage: percentage(grp.Count, total),
		}
		g.Go(func() error {
			dbc := dbctx.New(gctx)
			contacts, err := s.repo.CountContacts(dbc, orgID, analytics.ContactFilter{ActiveOnly: true, Industry: grp.Key})
			if err != nil {
				return err
			}
			statuses, err := s.repo.GroupClients(dbc, orgID, analytics.GroupByStatus, grp.Key)
			if err != nil {
				return err
			}
			priorities, err := s.repo.GroupClients(dbc, orgID, analytics.GroupByPriority, grp.Key)
			if err != nil {
				return err
			}
			out[i].AverageContacts = ratio(contacts, grp.Count)
			out[i].TopStatus = modal(statuses)
			out[i].TopPriority = modal(priorities)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("industry analysis: %w", err)
	}
	return out, nil
}

func (s *analyticsService) ContactEngagement(ctx context.Context, orgID uuid.UUID) (*ContactEngagement, error) {
	out := &ContactEngagement{}
	var totalClients int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyticsFanOut)
	s.countContacts(g, gctx, orgID, analytics.ContactFilter{}, &out.TotalContacts)
	s.countContacts(g, gctx, orgID, analytics.ContactFilter{ActiveOnly: true}, &out.ActiveContacts)
	s.countContacts(g, gctx, orgID, analytics.ContactFilter{ActiveOnly: true, PrimaryOnly: true}, &out.PrimaryContacts)
	s.countContacts(g, gctx, orgID, analytics.ContactFilter{ActiveOnly: true, WithEmail: true}, &out.ContactsWithEmail)
	s.countContacts(g, gctx, orgID, analytics.ContactFilter{ActiveOnly: true, WithPhone: true}, &out.ContactsWithPhone)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{HasActiveContact: pointers.Ptr(true)}, &out.ClientsWithContacts)
	s.countClients(g, gctx, orgID, analytics.ClientFilter{}, &totalClients)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("contact engagement: %w", err)
	}
	out.AverageContactsPerClient = ratio(out.ActiveContacts, totalClients)
	return out, nil
}

// HealthScores scores every live client, newest first.
func (s *analyticsService) HealthScores(ctx context.Context, orgID uuid.UUID, now time.Time) ([]HealthScore, error) {
	clients, err := s.clientRepo.List(dbctx.New(ctx), orgID, repos.ClientListFilter{})
	if err != nil {
		return nil, fmt.Errorf("health scores: %w", err)
	}
	out := make([]HealthScore, 0, len(clients))
	for _, c := range clients {
		out = append(out, ScoreClient(c, len(c.Contacts), now))
	}
	return out, nil
}

func (s *analyticsService) Dashboard(ctx context.Context, orgID uuid.UUID) (*Dashboard, error) {
	out := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Overview, err = s.Overview(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		out.Status, err = s.StatusDistribution(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		out.Priority, err = s.PriorityDistribution(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		out.Growth, err = s.GrowthTrends(gctx, orgID, defaultGrowthMonths)
		return err
	})
	g.Go(func() (err error) {
		out.Industries, err = s.IndustryAnalysis(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		out.Engagement, err = s.ContactEngagement(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		out.HealthScores, err = s.HealthScores(gctx, orgID, s.now())
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("dashboard failed", "organization_id", orgID.String(), "error", err)
		return nil, err
	}
	return out, nil
}

func (s *analyticsService) countClients(g *errgroup.Group, ctx context.Context, orgID uuid.UUID, f analytics.ClientFilter, dst *int64) {
	g.Go(func() error {
		n, err := s.repo.CountClients(dbctx.New(ctx), orgID, f)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	})
}

func (s *analyticsService) countContacts(g *errgroup.Group, ctx context.Context, orgID uuid.UUID, f analytics.ContactFilter, dst *int64) {
	g.Go(func() error {
		n, err := s.repo.CountContacts(dbctx.New(ctx), orgID, f)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	})
}

func sumCounts(groups []repos.GroupCount) int64 {
	var total int64
	for _, g := range groups {
		total += g.Count
	}
	return total
}

// percentage rounds count/total to a whole percent; 0 when total is 0.
func percentage(count, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// ratio is n/d rounded to one decimal; 0 when d is 0.
func ratio(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10) / 10
}

func growthRate(prev, cur int64) int {
	if prev <= 0 {
		return 0
	}
	return int(math.Round(float64(cur-prev) / float64(prev) * 100))
}

// modal picks the most frequent key. Groups arrive ordered by key, so ties
// resolve to the alphabetically first value.
func modal(groups []repos.GroupCount) string {
	best := unknownGroup
	var bestCount int64
	for _, g := range groups {
		if g.Count > bestCount && g.Key != "" {
			best, bestCount = g.Key, g.Count
		}
	}
	return best
}
