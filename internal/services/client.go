package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/client"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/clientbase-backend/internal/pkg/errors"
	"github.com/yungbote/clientbase-backend/internal/pkg/pointers"
	"github.com/yungbote/clientbase-backend/internal/pkg/validate"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	resourceClient = "client"

	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"

	msgClientCreated    = "Client created successfully"
	msgClientNotCreated = "Client not created"
	msgClientUpdated    = "Client updated successfully"
	msgClientNotFound   = "Client not found"
	msgClientDeleted    = "Client deleted successfully"
	msgClientTouched    = "Client last contact updated successfully"
)

// ClientInput is the full editable shape of a client. Updates overwrite every
// field, so omitted optional fields are cleared.
type ClientInput struct {
	Name          string   `json:"name" validate:"required" message:"required=Name is required"`
	CompanyName   string   `json:"company_name"`
	Website       string   `json:"website"`
	Description   string   `json:"description"`
	PrimaryEmail  string   `json:"primary_email"`
	PrimaryPhone  string   `json:"primary_phone"`
	Industry      string   `json:"industry"`
	CompanySize   string   `json:"company_size"`
	AnnualRevenue string   `json:"annual_revenue"`
	Status        string   `json:"status" validate:"omitempty,oneof=active inactive prospect lead"`
	Priority      string   `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Source        string   `json:"source" validate:"omitempty,oneof=referral website social cold_call other"`
	Tags          []string `json:"tags"`
}

// ClientFilter combines the list, status, priority and search reads.
type ClientFilter struct {
	Status   string
	Priority string
	Query    string
}

type ClientService interface {
	CreateClient(ctx context.Context, caller *Caller, in ClientInput, orgID uuid.UUID) Result
	UpdateClient(ctx context.Context, caller *Caller, in ClientInput, clientID, orgID uuid.UUID) Result
	DeleteClient(ctx context.Context, caller *Caller, clientID, orgID uuid.UUID, reason *string) Result
	TouchLastContact(ctx context.Context, caller *Caller, clientID, orgID uuid.UUID, at time.Time) Result

	ListClients(ctx context.Context, orgID uuid.UUID) ([]*types.Client, error)
	GetClient(ctx context.Context, orgID, clientID uuid.UUID) (*types.Client, error)
	ListClientsByStatus(ctx context.Context, orgID uuid.UUID, status string) ([]*types.Client, error)
	ListClientsByPriority(ctx context.Context, orgID uuid.UUID, priority string) ([]*types.Client, error)
	SearchClients(ctx context.Context, orgID uuid.UUID, query string) ([]*types.Client, error)
	FilterClients(ctx context.Context, orgID uuid.UUID, f ClientFilter) ([]*types.Client, error)
}

type clientService struct {
	db          *gorm.DB
	log         *logger.Logger
	clientRepo  repos.ClientRepo
	contactRepo repos.ContactRepo
	audit       AuditRecorder
	now         func() time.Time
}

func NewClientService(db *gorm.DB, log *logger.Logger, clientRepo repos.ClientRepo, contactRepo repos.ContactRepo, audit AuditRecorder) ClientService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &clientService{
		db:          db,
		log:         log.With("service", "ClientService"),
		clientRepo:  clientRepo,
		contactRepo: contactRepo,
		audit:       audit,
		now:         time.Now,
	}
}

func (s *clientService) CreateClient(ctx context.Context, caller *Caller, in ClientInput, orgID uuid.UUID) Result {
	if err := validate.Struct(in); err != nil {
		return invalid(err)
	}
	if !caller.Authenticated() {
		return unauthorized()
	}

	c := &types.Client{OrganizationID: orgID}
	applyClientInput(c, in)
	created, err := s.clientRepo.Create(dbctx.New(ctx), c)
	if err != nil {
		s.log.Error("create client failed", "organization_id", orgID.String(), "error", err)
		recordFailure(ctx, s.audit, AuditEvent{Action: actionCreate, Resource: resourceClient, OrganizationID: orgID, Caller: caller}, err)
		return internal(err)
	}
	if created == nil {
		return failed(KindInternal, msgClientNotCreated)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionCreate,
		Resource:       resourceClient,
		ResourceID:     created.ID.String(),
		Message:        msgClientCreated,
		Metadata:       created,
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgClientCreated, idPtr(created.ID))
}

func (s *clientService) UpdateClient(ctx context.Context, caller *Caller, in ClientInput, clientID, orgID uuid.UUID) Result {
	if err := validate.Struct(in); err != nil {
		return invalid(err)
	}
	if !caller.Authenticated() {
		return unauthorized()
	}

	dbc := dbctx.New(ctx)
	existing, err := s.clientRepo.GetByID(dbc, orgID, clientID)
	if err != nil {
		return s.clientFailure(ctx, caller, actionUpdate, clientID, orgID, err)
	}
	if existing == nil {
		return notFound(msgClientNotFound)
	}

	applyClientInput(existing, in)
	ok, err := s.clientRepo.Overwrite(dbc, existing)
	if err != nil {
		return s.clientFailure(ctx, caller, actionUpdate, clientID, orgID, err)
	}
	if !ok {
		// Deleted between the read and the write.
		return notFound(msgClientNotFound)
	}
	existing.Contacts = nil

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionUpdate,
		Resource:       resourceClient,
		ResourceID:     clientID.String(),
		Message:        msgClientUpdated,
		Metadata:       existing,
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgClientUpdated, idPtr(clientID))
}

type clientDeletion struct {
	ClientName   string    `json:"clientName"`
	DeleteReason *string   `json:"deleteReason"`
	DeletedBy    uuid.UUID `json:"deletedBy"`
	DeletedAt    string    `json:"deletedAt"`
}

// DeleteClient soft deletes the client and deactivates its contacts in one
// transaction. The contacts themselves are kept.
func (s *clientService) DeleteClient(ctx context.Context, caller *Caller, clientID, orgID uuid.UUID, reason *string) Result {
	if !caller.Authenticated() {
		return unauthorized()
	}
	if reason != nil {
		reason = pointers.NilIfEmpty(strings.TrimSpace(*reason))
	}

	now := s.now().UTC()
	var name string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.clientRepo.GetByID(dbc, orgID, clientID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.ErrNotFound
		}
		name = existing.Name
		ok, err := s.clientRepo.SoftDelete(dbc, orgID, clientID, caller.UserID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrNotFound
		}
		if _, err := s.contactRepo.DeactivateByClient(dbc, orgID, clientID); err != nil {
			return fmt.Errorf("deactivate contacts: %w", err)
		}
		return nil
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return notFound(msgClientNotFound)
	}
	if err != nil {
		return s.clientFailure(ctx, caller, actionDelete, clientID, orgID, err)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:     actionDelete,
		Resource:   resourceClient,
		ResourceID: clientID.String(),
		Message:    msgClientDeleted,
		Metadata: clientDeletion{
			ClientName:   name,
			DeleteReason: reason,
			DeletedBy:    caller.UserID,
			DeletedAt:    now.Format(time.RFC3339Nano),
		},
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgClientDeleted, idPtr(clientID))
}

func (s *clientService) TouchLastContact(ctx context.Context, caller *Caller, clientID, orgID uuid.UUID, at time.Time) Result {
	if !caller.Authenticated() {
		return unauthorized()
	}
	if at.IsZero() {
		at = s.now()
	}
	ok, err := s.clientRepo.TouchLastContact(dbctx.New(ctx), orgID, clientID, at)
	if err != nil {
		return s.clientFailure(ctx, caller, actionUpdate, clientID, orgID, err)
	}
	if !ok {
		return notFound(msgClientNotFound)
	}
	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionUpdate,
		Resource:       resourceClient,
		ResourceID:     clientID.String(),
		Message:        msgClientTouched,
		Metadata:       map[string]string{"lastContactAt": at.UTC().Format(time.RFC3339Nano)},
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgClientTouched, idPtr(clientID))
}

func (s *clientService) ListClients(ctx context.Context, orgID uuid.UUID) ([]*types.Client, error) {
	return s.FilterClients(ctx, orgID, ClientFilter{})
}

// GetClient returns nil when the client is missing, deleted or owned by
// another organization.
func (s *clientService) GetClient(ctx context.Context, orgID, clientID uuid.UUID) (*types.Client, error) {
	return s.clientRepo.GetByID(dbctx.New(ctx), orgID, clientID)
}

func (s *clientService) ListClientsByStatus(ctx context.Context, orgID uuid.UUID, status string) ([]*types.Client, error) {
	return s.FilterClients(ctx, orgID, ClientFilter{Status: status})
}

func (s *clientService) ListClientsByPriority(ctx context.Context, orgID uuid.UUID, priority string) ([]*types.Client, error) {
	return s.FilterClients(ctx, orgID, ClientFilter{Priority: priority})
}

func (s *clientService) SearchClients(ctx context.Context, orgID uuid.UUID, query string) ([]*types.Client, error) {
	return s.FilterClients(ctx, orgID, ClientFilter{Query: query})
}

func (s *clientService) FilterClients(ctx context.Context, orgID uuid.UUID, f ClientFilter) ([]*types.Client, error) {
	return s.clientRepo.List(dbctx.New(ctx), orgID, repos.ClientListFilter{
		Status:   f.Status,
		Priority: f.Priority,
		Query:    f.Query,
	})
}

func (s *clientService) clientFailure(ctx context.Context, caller *Caller, action string, clientID, orgID uuid.UUID, err error) Result {
	s.log.Error("client mutation failed", "action", action, "client_id", clientID.String(), "error", err)
	recordFailure(ctx, s.audit, AuditEvent{
		Action:         action,
		Resource:       resourceClient,
		ResourceID:     clientID.String(),
		OrganizationID: orgID,
		Caller:         caller,
	}, err)
	return internal(err)
}

func applyClientInput(c *types.Client, in ClientInput) {
	c.Name = in.Name
	c.CompanyName = in.CompanyName
	c.Website = in.Website
	c.Description = in.Description
	c.PrimaryEmail = in.PrimaryEmail
	c.PrimaryPhone = in.PrimaryPhone
	c.Industry = in.Industry
	c.CompanySize = in.CompanySize
	c.AnnualRevenue = in.AnnualRevenue
	c.Status = in.Status
	if c.Status == "" {
		c.Status = client.StatusProspect
	}
	c.Priority = in.Priority
	if c.Priority == "" {
		c.Priority = client.PriorityMedium
	}
	c.Source = in.Source
	c.Tags = datatypes.JSONSlice[string]{}
	if len(in.Tags) > 0 {
		c.Tags = append(c.Tags, in.Tags...)
	}
}
