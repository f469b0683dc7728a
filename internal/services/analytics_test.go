package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	"github.com/yungbote/clientbase-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clientbase-backend/internal/domain"
)

var analyticsNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newAnalytics(t *testing.T, f *fixture) AnalyticsService {
	t.Helper()
	log := testutil.Logger(t)
	svc := NewAnalyticsService(log, repos.NewAnalyticsRepo(f.db, log), repos.NewClientRepo(f.db, log))
	impl := svc.(*analyticsService)
	impl.now = func() time.Time { return analyticsNow }
	impl.loc = time.UTC
	return svc
}

// seedPortfolio creates four live clients and one deleted one:
//
//	acme     Oct 02  active   high      Technology  2 active contacts
//	beta     Sep 20  prospect critical  Retail      1 inactive contact
//	cobalt   Sep 30  lead     low       -
//	delta    Oct 01  active   medium    Technology
//	echo     Oct 05  deleted
func seedPortfolio(t *testing.T, f *fixture) map[string]*types.Client {
	t.Helper()
	out := map[string]*types.Client{}
	out["acme"] = testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme",
		testutil.WithCreatedAt(time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)),
		testutil.WithStatus("active"), testutil.WithPriority("high"), testutil.WithIndustry("Technology"))
	out["beta"] = testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Beta",
		testutil.WithCreatedAt(time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)),
		testutil.WithStatus("prospect"), testutil.WithPriority("critical"), testutil.WithIndustry("Retail"))
	out["cobalt"] = testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Cobalt",
		testutil.WithCreatedAt(time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)),
		testutil.WithStatus("lead"), testutil.WithPriority("low"))
	out["delta"] = testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Delta",
		testutil.WithCreatedAt(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)),
		testutil.WithStatus("active"), testutil.WithPriority("medium"), testutil.WithIndustry("Technology"))
	out["echo"] = testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Echo",
		testutil.WithCreatedAt(time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)),
		testutil.WithStatus("active"), testutil.WithPriority("high"), testutil.WithIndustry("Technology"))

	ada := testutil.SeedContact(t, f.ctx, f.db, out["acme"], "Ada", true, true)
	require.NoError(t, f.db.Model(ada).Update("email", "ada@acme.test").Error)
	testutil.SeedContact(t, f.ctx, f.db, out["acme"], "Grace", false, true)
	testutil.SeedContact(t, f.ctx, f.db, out["beta"], "Bob", false, false)
	testutil.SeedContact(t, f.ctx, f.db, out["echo"], "Eve", true, true)

	require.NoError(t, f.db.Delete(&types.Client{ID: out["echo"].ID}).Error)
	return out
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	seedPortfolio(t, f)

	got, err := newAnalytics(t, f).Overview(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, &OverviewMetrics{
		TotalClients:                4,
		ActiveClients:               2,
		NewClientsThisMonth:         2,
		ClientsAddedLastMonth:       2,
		AverageContactsPerClient:    0.5,
		ClientsWithNoContacts:       3,
		ClientsWithHighPriority:     1,
		ClientsWithCriticalPriority: 1,
	}, got)
}

func TestOverviewEmptyOrganization(t *testing.T) {
	f := newFixture(t)

	got, err := newAnalytics(t, f).Overview(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, &OverviewMetrics{}, got)
}

func TestDistributions(t *testing.T) {
	f := newFixture(t)
	seedPortfolio(t, f)
	svc := newAnalytics(t, f)

	status, err := svc.StatusDistribution(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, []StatusShare{
		{Status: "active", Count: 2, Percentage: 50, Color: "green"},
		{Status: "lead", Count: 1, Percentage: 25, Color: "yellow"},
		{Status: "prospect", Count: 1, Percentage: 25, Color: "blue"},
	}, status)

	priority, err := svc.PriorityDistribution(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, []PriorityShare{
		{Priority: "critical", Count: 1, Percentage: 25, Color: "red"},
		{Priority: "high", Count: 1, Percentage: 25, Color: "orange"},
		{Priority: "low", Count: 1, Percentage: 25, Color: "gray"},
		{Priority: "medium", Count: 1, Percentage: 25, Color: "blue"},
	}, priority)
}

func TestGrowthTrends(t *testing.T) {
	f := newFixture(t)
	seedPortfolio(t, f)

	got, err := newAnalytics(t, f).GrowthTrends(f.ctx, f.org.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []GrowthPoint{
		{Month: "Aug 26", NewClients: 0, TotalClients: 0, GrowthRate: 0},
		{Month: "Sep 26", NewClients: 2, TotalClients: 2, GrowthRate: 0},
		{Month: "Oct 26", NewClients: 2, TotalClients: 4, GrowthRate: 100},
	}, got)

	def, err := newAnalytics(t, f).GrowthTrends(f.ctx, f.org.ID, 0)
	require.NoError(t, err)
	require.Len(t, def, 12)
	assert.Equal(t, "Nov 25", def[0].Month)
	assert.Equal(t, "Oct 26", def[11].Month)
}

func TestIndustryAnalysis(t *testing.T) {
	f := newFixture(t)
	seedPortfolio(t, f)

	got, err := newAnalytics(t, f).IndustryAnalysis(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, []IndustryBreakdown{
		{Industry: "Retail", Count: 1, Percentage: 33, AverageContacts: 0, TopStatus: "prospect", TopPriority: "critical"},
		{Industry: "Technology", Count: 2, Percentage: 67, AverageContacts: 1, TopStatus: "active", TopPriority: "high"},
	}, got)
}

func TestContactEngagement(t *testing.T) {
	f := newFixture(t)
	seedPortfolio(t, f)

	got, err := newAnalytics(t, f).ContactEngagement(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, &ContactEngagement{
		TotalContacts:            3,
		ActiveContacts:           2,
		PrimaryContacts:          1,
		ContactsWithEmail:        1,
		ContactsWithPhone:        0,
		AverageContactsPerClient: 0.5,
		ClientsWithContacts:      1,
	}, got)
}

func TestHealthScoresAndDashboard(t *testing.T) {
	f := newFixture(t)
	seeded := seedPortfolio(t, f)
	require.NoError(t, f.db.Model(&types.Client{}).Where("id = ?", seeded["acme"].ID).Updates(map[string]interface{}{
		"company_name":    "Acme Inc",
		"primary_email":   "hi@acme.test",
		"last_contact_at": analyticsNow.Add(-48 * time.Hour),
	}).Error)
	svc := newAnalytics(t, f)

	scores, err := svc.HealthScores(f.ctx, f.org.ID, analyticsNow)
	require.NoError(t, err)
	require.Len(t, scores, 4)
	byName := map[string]HealthScore{}
	for _, s := range scores {
		byName[s.ClientName] = s
	}
	assert.Equal(t, 100, byName["Acme"].HealthScore)
	assert.Empty(t, byName["Acme"].Recommendations)
	assert.Equal(t, 20, byName["Beta"].HealthScore)
	assert.Equal(t, 0, byName["Cobalt"].HealthScore)
	assert.Len(t, byName["Cobalt"].Recommendations, 5)

	dash, err := svc.Dashboard(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), dash.Overview.TotalClients)
	assert.Len(t, dash.Status, 3)
	assert.Len(t, dash.Priority, 4)
	assert.Len(t, dash.Growth, 12)
	assert.Len(t, dash.Industries, 2)
	assert.Equal(t, int64(2), dash.Engagement.ActiveContacts)
	assert.Len(t, dash.HealthScores, 4)
}

func TestScoreClient(t *testing.T) {
	now := analyticsNow
	edge := now.Add(-30 * 24 * time.Hour)
	full := &types.Client{
		Name:          "Full",
		CompanyName:   "Full Co",
		PrimaryEmail:  "hi@full.test",
		Industry:      "Energy",
		Priority:      "critical",
		Status:        "active",
		LastContactAt: &edge,
	}
	got := ScoreClient(full, 1, now)
	assert.Equal(t, 100, got.HealthScore)
	assert.Equal(t, []string{}, got.Recommendations)

	stale := now.Add(-31 * 24 * time.Hour)
	empty := &types.Client{Name: "Empty", Priority: "medium", Status: "prospect", LastContactAt: &stale}
	got = ScoreClient(empty, 0, now)
	assert.Equal(t, 0, got.HealthScore)
	assert.Equal(t, HealthFactors{}, got.Factors)
	assert.Equal(t, []string{
		"Add contact information",
		"Schedule follow-up contact",
		"Complete client profile",
		"Consider increasing priority",
		"Review client status",
	}, got.Recommendations)
}

func TestAnalyticsHelpers(t *testing.T) {
	assert.Equal(t, 0, percentage(3, 0))
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 0.0, ratio(5, 0))
	assert.Equal(t, 1.7, ratio(5, 3))
	assert.Equal(t, 0, growthRate(0, 7))
	assert.Equal(t, -50, growthRate(4, 2))
	assert.Equal(t, "unknown", modal(nil))
	assert.Equal(t, "b", modal([]repos.GroupCount{{Key: "a", Count: 1}, {Key: "b", Count: 3}, {Key: "c", Count: 3}}))
}
