package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	"github.com/yungbote/clientbase-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/audit"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/pkg/pointers"
)

func contactInput(first string, primary bool) ContactInput {
	return ContactInput{
		FirstName: first,
		LastName:  "Lovelace",
		IsPrimary: pointers.Ptr(primary),
		IsActive:  pointers.Ptr(true),
	}
}

func primaryIDs(t *testing.T, f *fixture, clientID uuid.UUID) []uuid.UUID {
	t.Helper()
	contacts, err := f.contacts.ListContacts(f.ctx, f.org.ID, clientID, true)
	require.NoError(t, err)
	var out []uuid.UUID
	for _, c := range contacts {
		if c.IsPrimary {
			out = append(out, c.ID)
		}
	}
	return out
}

func TestCreateContactKeepsOnePrimary(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")

	first := f.contacts.CreateContact(f.ctx, f.caller, contactInput("Ada", true), c.ID, f.org.ID)
	require.True(t, first.Success, first.Error)
	assert.Equal(t, "Contact created successfully", first.Message)

	second := f.contacts.CreateContact(f.ctx, f.caller, contactInput("Grace", true), c.ID, f.org.ID)
	require.True(t, second.Success, second.Error)

	assert.Equal(t, []uuid.UUID{*second.ID}, primaryIDs(t, f, c.ID))

	ev := f.audit.last(t)
	assert.Equal(t, "create", ev.Action)
	assert.Equal(t, "client_contact", ev.Resource)
	assert.Equal(t, second.ID.String(), ev.ResourceID)
}

func TestCreateContactRejects(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")

	res := f.contacts.CreateContact(f.ctx, f.caller, ContactInput{Email: "nope"}, c.ID, f.org.ID)
	assert.Equal(t, KindValidation, res.Kind)
	assert.Equal(t, "First name is required; Last name is required; Invalid email address; Is primary is required; Is active is required", res.Error)

	res = f.contacts.CreateContact(f.ctx, nil, contactInput("Ada", false), c.ID, f.org.ID)
	assert.Equal(t, KindUnauthorized, res.Kind)

	res = f.contacts.CreateContact(f.ctx, f.caller, contactInput("Ada", false), uuid.New(), f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "Client not found", res.Error)

	other := testutil.SeedOrganization(t, f.ctx, f.db, uuid.Nil)
	foreign := testutil.SeedClient(t, f.ctx, f.db, other.ID, "Foreign")
	res = f.contacts.CreateContact(f.ctx, f.caller, contactInput("Ada", false), foreign.ID, f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestUpdateContact(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	ada := testutil.SeedContact(t, f.ctx, f.db, c, "Ada", true, true)
	grace := testutil.SeedContact(t, f.ctx, f.db, c, "Grace", false, true)

	res := f.contacts.UpdateContact(f.ctx, f.caller, ContactPatch{
		Position:  pointers.Ptr("CTO"),
		Email:     pointers.Ptr("grace@acme.test"),
		IsPrimary: pointers.Ptr(true),
	}, grace.ID, f.org.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Contact updated successfully", res.Message)
	assert.Equal(t, []uuid.UUID{grace.ID}, primaryIDs(t, f, c.ID))

	contacts, err := f.contacts.ListContacts(f.ctx, f.org.ID, c.ID, false)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "CTO", contacts[0].Position)
	assert.Equal(t, "grace@acme.test", contacts[0].Email)
	assert.Equal(t, "Grace", contacts[0].FirstName)
	assert.Equal(t, ada.ID, contacts[1].ID)

	// An empty email clears the field.
	res = f.contacts.UpdateContact(f.ctx, f.caller, ContactPatch{Email: pointers.Ptr("")}, grace.ID, f.org.ID)
	require.True(t, res.Success, res.Error)

	res = f.contacts.UpdateContact(f.ctx, f.caller, ContactPatch{Email: pointers.Ptr("bad")}, grace.ID, f.org.ID)
	assert.Equal(t, KindValidation, res.Kind)
	assert.Equal(t, "Invalid email address", res.Error)

	res = f.contacts.UpdateContact(f.ctx, f.caller, ContactPatch{FirstName: pointers.Ptr("")}, grace.ID, f.org.ID)
	assert.Equal(t, "First name is required", res.Error)

	res = f.contacts.UpdateContact(f.ctx, f.caller, ContactPatch{Position: pointers.Ptr("CEO")}, uuid.New(), f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "Contact not found", res.Error)
}

func TestSetPrimaryContact(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	testutil.SeedContact(t, f.ctx, f.db, c, "Ada", true, true)
	grace := testutil.SeedContact(t, f.ctx, f.db, c, "Grace", false, true)

	res := f.contacts.SetPrimaryContact(f.ctx, f.caller, grace.ID, f.org.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Primary contact updated successfully", res.Message)
	assert.Equal(t, []uuid.UUID{grace.ID}, primaryIDs(t, f, c.ID))
	assert.Equal(t, "Contact set as primary", f.audit.last(t).Message)

	// Promoting the current primary again is a no-op success.
	res = f.contacts.SetPrimaryContact(f.ctx, f.caller, grace.ID, f.org.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, []uuid.UUID{grace.ID}, primaryIDs(t, f, c.ID))

	other := testutil.SeedOrganization(t, f.ctx, f.db, uuid.Nil)
	foreign := testutil.SeedContact(t, f.ctx, f.db, testutil.SeedClient(t, f.ctx, f.db, other.ID, "Foreign"), "Eve", false, true)
	res = f.contacts.SetPrimaryContact(f.ctx, f.caller, foreign.ID, f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestDeleteContact(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	ada := testutil.SeedContact(t, f.ctx, f.db, c, "Ada", true, true)

	res := f.contacts.DeleteContact(f.ctx, f.caller, ada.ID, f.org.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Contact deleted successfully", res.Message)

	contacts, err := f.contacts.ListContacts(f.ctx, f.org.ID, c.ID, true)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	ev := f.audit.last(t)
	assert.Equal(t, "delete", ev.Action)
	assert.NotNil(t, ev.Metadata)

	res = f.contacts.DeleteContact(f.ctx, f.caller, ada.ID, f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)

	res = f.contacts.DeleteContact(f.ctx, nil, ada.ID, f.org.ID)
	assert.Equal(t, KindUnauthorized, res.Kind)
}

// duplicatePrimaryRepo fails every write that can trip the one-primary index,
// the way a concurrent promotion on the same client does.
type duplicatePrimaryRepo struct {
	repos.ContactRepo
}

func (duplicatePrimaryRepo) Create(dbctx.Context, *types.ClientContact) (*types.ClientContact, error) {
	return nil, gorm.ErrDuplicatedKey
}

func (duplicatePrimaryRepo) UpdateFields(dbctx.Context, uuid.UUID, uuid.UUID, map[string]interface{}) error {
	return gorm.ErrDuplicatedKey
}

func (duplicatePrimaryRepo) SetPrimary(dbctx.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, gorm.ErrDuplicatedKey
}

func TestPrimaryContactConflict(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	ada := testutil.SeedContact(t, f.ctx, f.db, c, "Ada", true, true)

	log := testutil.Logger(t)
	svc := NewContactService(f.db, log, repos.NewClientRepo(f.db, log),
		duplicatePrimaryRepo{ContactRepo: repos.NewContactRepo(f.db, log)}, f.audit)

	cases := map[string]struct {
		action string
		run    func() Result
	}{
		"create": {"create", func() Result {
			return svc.CreateContact(f.ctx, f.caller, contactInput("Grace", true), c.ID, f.org.ID)
		}},
		"update": {"update", func() Result {
			return svc.UpdateContact(f.ctx, f.caller, ContactPatch{IsPrimary: pointers.Ptr(true)}, ada.ID, f.org.ID)
		}},
		"set primary": {"update", func() Result {
			return svc.SetPrimaryContact(f.ctx, f.caller, ada.ID, f.org.ID)
		}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := tc.run()
			assert.False(t, res.Success)
			assert.Equal(t, KindConflict, res.Kind)
			assert.Equal(t, "Primary contact was changed concurrently", res.Error)

			ev := f.audit.last(t)
			assert.Equal(t, tc.action, ev.Action)
			assert.Equal(t, "client_contact", ev.Resource)
			assert.Equal(t, audit.StatusFailure, ev.Status)
		})
	}

	// The failed writes rolled back; Ada is still the only primary.
	assert.Equal(t, []uuid.UUID{ada.ID}, primaryIDs(t, f, c.ID))
}

func TestContactsOfDeletedClientAreReadOnly(t *testing.T) {
	f := newFixture(t)
	c := testutil.SeedClient(t, f.ctx, f.db, f.org.ID, "Acme")
	ada := testutil.SeedContact(t, f.ctx, f.db, c, "Ada", true, true)
	require.True(t, f.clients.DeleteClient(f.ctx, f.caller, c.ID, f.org.ID, nil).Success)
	events := len(f.audit.events)

	res := f.contacts.UpdateContact(f.ctx, f.caller, ContactPatch{IsActive: pointers.Ptr(true)}, ada.ID, f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "Client not found", res.Error)

	res = f.contacts.SetPrimaryContact(f.ctx, f.caller, ada.ID, f.org.ID)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "Client not found", res.Error)

	assert.Len(t, f.audit.events, events)
	contacts, err := f.contacts.ListContacts(f.ctx, f.org.ID, c.ID, false)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
