package services

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/clientbase-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/audit"
)

func TestCreateClient(t *testing.T) {
	f := newFixture(t)

	res := f.clients.CreateClient(f.ctx, f.caller, ClientInput{Name: "Acme", Industry: "Technology"}, f.org.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Client created successfully", res.Message)
	require.NotNil(t, res.ID)

	got, err := f.clients.GetClient(f.ctx, f.org.ID, *res.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "prospect", got.Status)
	assert.Equal(t, "medium", got.Priority)
	assert.Empty(t, got.Tags)

	ev := f.audit.last(t)
	assert.Equal(t, "create", ev.Action)
	assert.Equal(t, "client", ev.Resource)
	assert.Equal(t, res.ID.String(), ev.ResourceID)
	assert.Equal(t, f.org.ID, ev.OrganizationID)
	assert.Equal(t, f.caller, ev.Caller)
}

func TestCreateClientRejects(t *testing.T) {
	f := newFixture(t)

	res := f.clients.CreateClient(f.ctx, f.caller, ClientInput{Status: "archived"}, f.org.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindValidation, res.Kind)
	assert.Equal(t, "Name is required; Status must be one of: active, inactive, prospect, lead", res.Error)

	res = f.clients.CreateClient(f.ctx, nil, ClientInput{Name: "Acme"}, f.org.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindUnauthorized, res.Kind)
	assert.Equal(t, "Unauthorized", res.Error)

	assert.Empty(t, f.audit.events)
	list, err := f.clients.ListClients(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAuditFailureDoesNotChangeResult(t *testing.T) {
	f := newFixture(t)
	f.audit.fail = true

	res := f.clients.CreateClient(f.ctx, f.caller, ClientInput{Name: "Acme"}, f.org.ID)
	require.True(t, res.Success)
	assert.Equal(t, "Client created successfully", res.Message)
	assert.Len(t, f.audit.events, 1)
}

func TestUpdateClient(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme", testutil.WithProfile("Acme Inc", "hi@acme.test", "Retail"))

	res := f.clients.UpdateClient(f.ctx, f.caller, ClientInput{
		Name:     "Acme Renamed",
		Status:   "active",
		Priority: "high",
		Tags:     []string{"vip"},
	}, c.ID, f.org.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Client updated successfully", res.Message)

	got, err := f.clients.GetClient(f.ctx, f.org.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Renamed", got.Name)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, []string{"vip"}, []string(got.Tags))
	// Omitted optional fields are cleared by a full update.
	assert.Empty(t, got.CompanyName)
	assert.Empty(t, got.Industry)
}

func TestUpdateClientOtherOrganization(t *testing.T) {
	f := newFixture(t)
	other := testutil.SeedOrganization(t, f.ctx, f.db, uuid.Nil)
	c := testutil.SeedClient(t, f.ctx, f.db, other.ID, "Foreign")

	res := f.clients.UpdateClient(f.ctx, f.caller, ClientInput{Name: "Hijack"}, c.ID, f.org.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "Client not found", res.Error)

	got, err := f.clients.GetClient(f.ctx, other.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Foreign", got.Name)
}

func TestDeleteClient(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	primary := testutil.SeedContact(t, f.ctx, f.db, c, "Ada", true, true)
	testutil.SeedContact(t, f.ctx, f.db, c, "Bob", false, true)

	reason := "  duplicate record  "
	res := f.clients.DeleteClient(f.ctx, f.caller, c.ID, f.org.ID, &reason)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Client deleted successfully", res.Message)

	got, err := f.clients.GetClient(f.ctx, f.org.ID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var stored types.Client
	require.NoError(t, f.db.Unscoped().Where("id = ?", c.ID).First(&stored).Error)
	assert.True(t, stored.DeletedAt.Valid)
	require.NotNil(t, stored.DeletedBy)
	assert.Equal(t, f.user.ID, *stored.DeletedBy)
	require.NotNil(t, stored.DeleteReason)
	assert.Equal(t, "duplicate record", *stored.DeleteReason)

	contacts, err := f.contacts.ListContacts(f.ctx, f.org.ID, c.ID, true)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	for _, ct := range contacts {
		assert.False(t, ct.IsActive, ct.FirstName)
	}
	assert.Equal(t, primary.ID, contacts[0].ID)

	ev := f.audit.last(t)
	assert.Equal(t, "delete", ev.Action)
	raw, err := json.Marshal(ev.Metadata)
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "Acme", meta["clientName"])
	assert.Equal(t, "duplicate record", meta["deleteReason"])
	assert.Equal(t, f.user.ID.String(), meta["deletedBy"])

	again := f.clients.DeleteClient(f.ctx, f.caller, c.ID, f.org.ID, nil)
	assert.Equal(t, KindNotFound, again.Kind)
}

func TestDeleteClientUnauthorized(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")

	res := f.clients.DeleteClient(f.ctx, &Caller{}, c.ID, f.org.ID, nil)
	assert.Equal(t, KindUnauthorized, res.Kind)

	got, err := f.clients.GetClient(f.ctx, f.org.ID, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestTouchLastContact(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	res := f.clients.TouchLastContact(f.ctx, f.caller, c.ID, f.org.ID, at)
	require.True(t, res.Success, res.Error)

	got, err := f.clients.GetClient(f.ctx, f.org.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContactAt)
	assert.True(t, got.LastContactAt.Equal(at))

	res = f.clients.TouchLastContact(f.ctx, f.caller, uuid.New(), f.org.ID, at)
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestClientReads(t *testing.T) {
	f := newFixture(t)
	testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme Corp", testutil.WithStatus("active"), testutil.WithPriority("high"))
	testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Globex", testutil.WithIndustry("Energy"))
	gone := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme Old", testutil.WithStatus("active"))
	require.True(t, f.clients.DeleteClient(f.ctx, f.caller, gone.ID, f.org.ID, nil).Success)

	other := testutil.SeedOrganization(t, f.ctx, f.db, uuid.Nil)
	testutil.SeedClient(t, f.ctx, f.db, other.ID, "Acme Elsewhere", testutil.WithStatus("active"))

	all, err := f.clients.ListClients(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.clients.ListClientsByStatus(f.ctx, f.org.ID, "active")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Acme Corp", active[0].Name)

	high, err := f.clients.ListClientsByPriority(f.ctx, f.org.ID, "high")
	require.NoError(t, err)
	assert.Len(t, high, 1)

	found, err := f.clients.SearchClients(f.ctx, f.org.ID, "ENERGY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Globex", found[0].Name)

	both, err := f.clients.FilterClients(f.ctx, f.org.ID, ClientFilter{Status: "active", Query: "acme"})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestCreateClientFailureIsAudited(t *testing.T) {
	if os.Getenv("TEST_POSTGRES_DSN") != "" {
		t.Skip("closes the connection pool")
	}
	f := newFixture(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res := f.clients.CreateClient(f.ctx, f.caller, ClientInput{Name: "Acme"}, f.org.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindInternal, res.Kind)

	ev := f.audit.last(t)
	assert.Equal(t, audit.StatusFailure, ev.Status)
	assert.NotEmpty(t, ev.Message)
}
