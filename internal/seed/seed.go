package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
	"github.com/yungbote/clientbase-backend/internal/services"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Clients []ClientFixture `yaml:"clients"`
}

type ClientFixture struct {
	Name               string           `yaml:"name"`
	CompanyName        string           `yaml:"company_name"`
	Website            string           `yaml:"website"`
	Description        string           `yaml:"description"`
	PrimaryEmail       string           `yaml:"primary_email"`
	PrimaryPhone       string           `yaml:"primary_phone"`
	Industry           string           `yaml:"industry"`
	CompanySize        string           `yaml:"company_size"`
	AnnualRevenue      string           `yaml:"annual_revenue"`
	Status             string           `yaml:"status"`
	Priority           string           `yaml:"priority"`
	Source             string           `yaml:"source"`
	Tags               []string         `yaml:"tags"`
	LastContactDaysAgo int              `yaml:"last_contact_days_ago"`
	Contacts           []ContactFixture `yaml:"contacts"`
}

func (c ClientFixture) input() services.ClientInput {
	return services.ClientInput{
		Name:          c.Name,
		CompanyName:   c.CompanyName,
		Website:       c.Website,
		Description:   c.Description,
		PrimaryEmail:  c.PrimaryEmail,
		PrimaryPhone:  c.PrimaryPhone,
		Industry:      c.Industry,
		CompanySize:   c.CompanySize,
		AnnualRevenue: c.AnnualRevenue,
		Status:        c.Status,
		Priority:      c.Priority,
		Source:        c.Source,
		Tags:          c.Tags,
	}
}

type ContactFixture struct {
	FirstName              string `yaml:"first_name"`
	LastName               string `yaml:"last_name"`
	Email                  string `yaml:"email"`
	Phone                  string `yaml:"phone"`
	Position               string `yaml:"position"`
	Department             string `yaml:"department"`
	PreferredContactMethod string `yaml:"preferred_contact_method"`
	Timezone               string `yaml:"timezone"`
	IsPrimary              bool   `yaml:"is_primary"`
	IsActive               bool   `yaml:"is_active"`
}

func (c ContactFixture) input() services.ContactInput {
	primary, active := c.IsPrimary, c.IsActive
	return services.ContactInput{
		FirstName:              c.FirstName,
		LastName:               c.LastName,
		Email:                  c.Email,
		Phone:                  c.Phone,
		Position:               c.Position,
		Department:             c.Department,
		PreferredContactMethod: c.PreferredContactMethod,
		Timezone:               c.Timezone,
		IsPrimary:              &primary,
		IsActive:               &active,
	}
}

// DefaultFixtures parses the embedded sample data.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

type Owner struct {
	Name     string
	Email    string
	Password string
}

type Workspace struct {
	Name string
	Slug string
}

type Summary struct {
	OrganizationID uuid.UUID
	Clients        int
	Contacts       int
	RecentAudit    []*types.AuditLog
}

type Seeder struct {
	log       *logger.Logger
	auth      services.AuthService
	workspace services.WorkspaceService
	clients   services.ClientService
	contacts  services.ContactService
	auditRepo repos.AuditLogRepo
	now       func() time.Time
}

func NewSeeder(log *logger.Logger, auth services.AuthService, workspace services.WorkspaceService, clients services.ClientService, contacts services.ContactService, auditRepo repos.AuditLogRepo) *Seeder {
	return &Seeder{
		log:       log.With("component", "Seeder"),
		auth:      auth,
		workspace: workspace,
		clients:   clients,
		contacts:  contacts,
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// Run signs the owner up (or in, when the email exists), finds or creates the
// workspace by slug and loads every fixture through the regular services, so
// the audit trail is the same as for API traffic.
func (s *Seeder) Run(ctx context.Context, owner Owner, ws Workspace, f *Fixtures) (*Summary, error) {
	if f == nil {
		return nil, errors.New("no fixtures")
	}
	caller, err := s.signIn(ctx, owner)
	if err != nil {
		return nil, err
	}
	orgID, err := s.ensureWorkspace(ctx, caller, ws)
	if err != nil {
		return nil, err
	}

	sum := &Summary{OrganizationID: orgID}
	for _, cf := range f.Clients {
		res := s.clients.CreateClient(ctx, caller, cf.input(), orgID)
		if !res.Success || res.ID == nil {
			return nil, fmt.Errorf("create client %q: %s", cf.Name, res.Error)
		}
		clientID := *res.ID
		sum.Clients++
		s.log.Info("Created client", "name", cf.Name, "client_id", clientID.String())

		if cf.LastContactDaysAgo > 0 {
			at := s.now().Add(-time.Duration(cf.LastContactDaysAgo) * 24 * time.Hour)
			if res := s.clients.TouchLastContact(ctx, caller, clientID, orgID, at); !res.Success {
				return nil, fmt.Errorf("touch client %q: %s", cf.Name, res.Error)
			}
		}
		for _, ct := range cf.Contacts {
			if res := s.contacts.CreateContact(ctx, caller, ct.input(), clientID, orgID); !res.Success {
				return nil, fmt.Errorf("create contact %s %s: %s", ct.FirstName, ct.LastName, res.Error)
			}
			sum.Contacts++
		}
	}

	recent, err := s.auditRepo.ListByOrganization(dbctx.Context{Ctx: ctx}, orgID, 5)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	sum.RecentAudit = recent
	return sum, nil
}

func (s *Seeder) signIn(ctx context.Context, owner Owner) (*services.Caller, error) {
	token, res := s.auth.SignUp(ctx, services.SignUpInput{
		Name:     owner.Name,
		Email:    owner.Email,
		Password: owner.Password,
	}, "127.0.0.1", "clientbase-seed")
	if res.Kind == services.KindConflict {
		token, res = s.auth.SignIn(ctx, services.SignInInput{Email: owner.Email, Password: owner.Password}, "127.0.0.1", "clientbase-seed")
	}
	if !res.Success || token == nil {
		return nil, fmt.Errorf("owner session: %s", res.Error)
	}
	caller, err := s.auth.ResolveCaller(ctx, token.Token)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	return caller, nil
}

func (s *Seeder) ensureWorkspace(ctx context.Context, caller *services.Caller, ws Workspace) (uuid.UUID, error) {
	existing, err := s.workspace.ListWorkspaces(ctx, caller)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list workspaces: %w", err)
	}
	for _, o := range existing {
		if o.Slug == ws.Slug {
			s.log.Info("Using existing workspace", "slug", ws.Slug, "organization_id", o.ID.String())
			return o.ID, nil
		}
	}
	res := s.workspace.CreateWorkspace(ctx, caller, services.WorkspaceInput{Name: ws.Name, Slug: ws.Slug})
	if !res.Success || res.ID == nil {
		return uuid.Nil, fmt.Errorf("create workspace %q: %s", ws.Slug, res.Error)
	}
	return *res.ID, nil
}
