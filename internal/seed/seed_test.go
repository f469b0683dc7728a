package seed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	"github.com/yungbote/clientbase-backend/internal/data/repos/testutil"
	"github.com/yungbote/clientbase-backend/internal/services"
)

func TestDefaultFixtures(t *testing.T) {
	f, err := DefaultFixtures()
	require.NoError(t, err)
	require.Len(t, f.Clients, 10)

	contacts, primaries := 0, 0
	for _, c := range f.Clients {
		contacts += len(c.Contacts)
		for _, ct := range c.Contacts {
			if ct.IsPrimary {
				primaries++
			}
		}
		assert.NotEmpty(t, c.Tags, c.Name)
		assert.Positive(t, c.LastContactDaysAgo, c.Name)
	}
	assert.Equal(t, 22, contacts)
	assert.Equal(t, 10, primaries)

	acme := f.Clients[0]
	assert.Equal(t, "Acme Corporation", acme.Name)
	assert.Equal(t, "201-500", acme.CompanySize)
	assert.Equal(t, []string{"enterprise", "tech", "high-value", "long-term"}, acme.Tags)
	assert.Equal(t, "America/New_York", acme.Contacts[0].Timezone)
}

func TestParseFixturesRejectsGarbage(t *testing.T) {
	_, err := ParseFixtures([]byte("clients: [this is: not: valid"))
	assert.Error(t, err)
}

func TestSeederRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	sessionRepo := repos.NewSessionRepo(db, log)
	clientRepo := repos.NewClientRepo(db, log)
	contactRepo := repos.NewContactRepo(db, log)
	auditRepo := repos.NewAuditLogRepo(db, log)
	audit := services.NewAuditRecorder(log, auditRepo)

	clientSvc := services.NewClientService(db, log, clientRepo, contactRepo, audit)
	contactSvc := services.NewContactService(db, log, clientRepo, contactRepo, audit)
	seeder := NewSeeder(log,
		services.NewAuthService(db, log, userRepo, sessionRepo, nil, services.AuthConfig{JWTSecret: "seed", BcryptCost: bcrypt.MinCost}),
		services.NewWorkspaceService(db, log, repos.NewOrganizationRepo(db, log), sessionRepo, nil, audit),
		clientSvc,
		contactSvc,
		auditRepo,
	)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	seeder.now = func() time.Time { return now }

	f, err := DefaultFixtures()
	require.NoError(t, err)
	owner := Owner{Name: "Demo Owner", Email: "owner-" + uuid.NewString()[:8] + "@example.com", Password: "demo-password"}
	ws := Workspace{Name: "Demo", Slug: "demo-" + uuid.NewString()[:8]}

	sum, err := seeder.Run(ctx, owner, ws, f)
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Clients)
	assert.Equal(t, 22, sum.Contacts)
	require.Len(t, sum.RecentAudit, 5)
	for _, entry := range sum.RecentAudit {
		assert.Contains(t, []string{"create", "update"}, entry.Action)
		require.NotNil(t, entry.OrganizationID)
		assert.Equal(t, sum.OrganizationID, *entry.OrganizationID)
	}

	clients, err := clientSvc.ListClients(ctx, sum.OrganizationID)
	require.NoError(t, err)
	require.Len(t, clients, 10)

	byName := map[string]uuid.UUID{}
	for _, c := range clients {
		byName[c.Name] = c.ID
		if c.Name == "Acme Corporation" {
			require.NotNil(t, c.LastContactAt)
			assert.True(t, c.LastContactAt.Equal(now.Add(-48*time.Hour)), "last contact %v", c.LastContactAt)
			assert.Len(t, c.Contacts, 3)
		}
	}

	// The advisory firm's only contact is primary but inactive.
	advisory := byName["Financial Advisory Group"]
	active, err := contactSvc.ListContacts(ctx, sum.OrganizationID, advisory, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := contactSvc.ListContacts(ctx, sum.OrganizationID, advisory, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsPrimary)

	// A second run signs the existing owner in and reuses the workspace.
	again, err := seeder.Run(ctx, owner, ws, &Fixtures{})
	require.NoError(t, err)
	assert.Equal(t, sum.OrganizationID, again.OrganizationID)
	assert.Zero(t, again.Clients)
}

func TestSeederRunRequiresFixtures(t *testing.T) {
	s := &Seeder{}
	_, err := s.Run(context.Background(), Owner{}, Workspace{}, nil)
	assert.Error(t, err)
}
