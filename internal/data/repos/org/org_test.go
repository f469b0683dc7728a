package org

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/clientbase-backend/internal/data/db"
	"github.com/yungbote/clientbase-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	orgdomain "github.com/yungbote/clientbase-backend/internal/domain/org"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
)

func TestOrganizationRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewOrganizationRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "orgrepo-"+uuid.NewString()[:8]+"@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "orgrepo-"+uuid.NewString()[:8]+"@example.com")

	slug := "acme-" + uuid.NewString()[:8]
	o := &types.Organization{Name: "Acme", Slug: slug}
	if _, err := repo.Create(dbc, o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, err := repo.GetByID(dbc, o.ID); err != nil || got == nil || got.Slug != slug {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", got, err)
	}
	if ok, err := repo.SlugExists(dbc, slug); err != nil || !ok {
		t.Fatalf("SlugExists: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.SlugExists(dbc, slug+"-nope"); err != nil || ok {
		t.Fatalf("SlugExists free: ok=%v err=%v", ok, err)
	}

	if _, err := repo.AddMember(dbc, &types.Member{OrganizationID: o.ID, UserID: u.ID, Role: orgdomain.RoleOwner}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := tx.SavePoint("dup_member").Error; err != nil {
		t.Fatalf("SavePoint: %v", err)
	}
	if _, err := repo.AddMember(dbc, &types.Member{OrganizationID: o.ID, UserID: u.ID, Role: orgdomain.RoleMember}); !db.IsUniqueViolation(err) {
		t.Fatalf("AddMember twice: expected unique violation, got %v", err)
	}
	if err := tx.RollbackTo("dup_member").Error; err != nil {
		t.Fatalf("RollbackTo: %v", err)
	}

	if ok, err := repo.IsMember(dbc, o.ID, u.ID); err != nil || !ok {
		t.Fatalf("IsMember: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.IsMember(dbc, o.ID, stranger.ID); err != nil || ok {
		t.Fatalf("IsMember stranger: ok=%v err=%v", ok, err)
	}

	second := testutil.SeedOrganization(t, ctx, tx, u.ID)
	testutil.SeedOrganization(t, ctx, tx, stranger.ID)

	orgs, err := repo.ListForUser(dbc, u.ID)
	if err != nil || len(orgs) != 2 {
		t.Fatalf("ListForUser: len=%d err=%v", len(orgs), err)
	}
	seen := map[uuid.UUID]bool{}
	for _, got := range orgs {
		seen[got.ID] = true
		if len(got.Members) != 1 || got.Members[0].UserID != u.ID {
			t.Fatalf("ListForUser: expected members preloaded for %s", got.Slug)
		}
	}
	if !seen[o.ID] || !seen[second.ID] {
		t.Fatalf("ListForUser: missing organizations, got %v", seen)
	}
}
