package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/org"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     "Test User",
		Email:    email,
		Password: "pw",
		Role:     "user",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedOrganization creates an organization with a unique slug and, when
// ownerID is set, an owner membership.
func SeedOrganization(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) *types.Organization {
	tb.Helper()
	id := uuid.New()
	o := &types.Organization{
		ID:   id,
		Name: "Org " + id.String()[:8],
		Slug: "org-" + id.String()[:8],
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed organization: %v", err)
	}
	if ownerID != uuid.Nil {
		m := &types.Member{OrganizationID: o.ID, UserID: ownerID, Role: org.RoleOwner}
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			tb.Fatalf("seed member: %v", err)
		}
	}
	return o
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Session {
	tb.Helper()
	s := &types.Session{
		ID:        uuid.New(),
		UserID:    userID,
		IPAddress: "127.0.0.1",
		UserAgent: "go-test",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

// ClientOption tweaks a seeded client before insert.
type ClientOption func(c *types.Client)

func WithStatus(status string) ClientOption {
	return func(c *types.Client) { c.Status = status }
}

func WithPriority(priority string) ClientOption {
	return func(c *types.Client) { c.Priority = priority }
}

func WithIndustry(industry string) ClientOption {
	return func(c *types.Client) { c.Industry = industry }
}

func WithCreatedAt(at time.Time) ClientOption {
	return func(c *types.Client) { c.CreatedAt = at.UTC() }
}

func WithLastContactAt(at time.Time) ClientOption {
	return func(c *types.Client) {
		t := at.UTC()
		c.LastContactAt = &t
	}
}

func WithProfile(companyName, email, industry string) ClientOption {
	return func(c *types.Client) {
		c.CompanyName = companyName
		c.PrimaryEmail = email
		c.Industry = industry
	}
}

func SeedClient(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, name string, opts ...ClientOption) *types.Client {
	tb.Helper()
	c := &types.Client{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Status:         "prospect",
		Priority:       "medium",
		Tags:           datatypes.JSONSlice[string]{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := tx.WithContext(ctx).Omit("Contacts").Create(c).Error; err != nil {
		tb.Fatalf("seed client: %v", err)
	}
	return c
}

func SeedContact(tb testing.TB, ctx context.Context, tx *gorm.DB, cl *types.Client, firstName string, primary, active bool) *types.ClientContact {
	tb.Helper()
	c := &types.ClientContact{
		ID:             uuid.New(),
		ClientID:       cl.ID,
		OrganizationID: cl.OrganizationID,
		FirstName:      firstName,
		LastName:       "Tester",
		IsPrimary:      primary,
		IsActive:       active,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contact: %v", err)
	}
	return c
}
