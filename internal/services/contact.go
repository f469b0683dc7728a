package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/db"
	"github.com/yungbote/clientbase-backend/internal/data/repos"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/clientbase-backend/internal/pkg/errors"
	"github.com/yungbote/clientbase-backend/internal/pkg/validate"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	resourceContact = "client_contact"

	msgContactCreated    = "Contact created successfully"
	msgContactNotCreated = "Contact not created"
	msgContactUpdated    = "Contact updated successfully"
	msgContactDeleted    = "Contact deleted successfully"
	msgContactNotFound   = "Contact not found"
	msgContactSetPrimary = "Contact set as primary"
	msgPrimaryUpdated    = "Primary contact updated successfully"
	msgPrimaryConflict   = "Primary contact was changed concurrently"
)

type ContactInput struct {
	FirstName              string `json:"first_name" validate:"required" message:"required=First name is required"`
	LastName               string `json:"last_name" validate:"required" message:"required=Last name is required"`
	Email                  string `json:"email" validate:"omitempty,email" message:"email=Invalid email address"`
	Phone                  string `json:"phone"`
	Position               string `json:"position"`
	Department             string `json:"department"`
	PreferredContactMethod string `json:"preferred_contact_method" validate:"omitempty,oneof=email phone sms"`
	Timezone               string `json:"timezone"`
	IsPrimary              *bool  `json:"is_primary" validate:"required" message:"required=Is primary is required"`
	IsActive               *bool  `json:"is_active" validate:"required" message:"required=Is active is required"`
}

// ContactPatch updates only the fields that are set. An empty email clears it.
type ContactPatch struct {
	FirstName              *string `json:"first_name" validate:"omitempty,min=1" message:"min=First name is required"`
	LastName               *string `json:"last_name" validate:"omitempty,min=1" message:"min=Last name is required"`
	Email                  *string `json:"email" validate:"omitempty,email|len=0" message:"email=Invalid email address"`
	Phone                  *string `json:"phone"`
	Position               *string `json:"position"`
	Department             *string `json:"department"`
	PreferredContactMethod *string `json:"preferred_contact_method" validate:"omitempty,oneof=email phone sms"`
	Timezone               *string `json:"timezone"`
	IsPrimary              *bool   `json:"is_primary"`
	IsActive               *bool   `json:"is_active"`
}

func (p ContactPatch) updates() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("first_name", p.FirstName)
	set("last_name", p.LastName)
	set("email", p.Email)
	set("phone", p.Phone)
	set("position", p.Position)
	set("department", p.Department)
	set("preferred_contact_method", p.PreferredContactMethod)
	set("timezone", p.Timezone)
	if p.IsPrimary != nil {
		out["is_primary"] = *p.IsPrimary
	}
	if p.IsActive != nil {
		out["is_active"] = *p.IsActive
	}
	return out
}

type ContactService interface {
	CreateContact(ctx context.Context, caller *Caller, in ContactInput, clientID, orgID uuid.UUID) Result
	UpdateContact(ctx context.Context, caller *Caller, in ContactPatch, contactID, orgID uuid.UUID) Result
	DeleteContact(ctx context.Context, caller *Caller, contactID, orgID uuid.UUID) Result
	SetPrimaryContact(ctx context.Context, caller *Caller, contactID, orgID uuid.UUID) Result
	ListContacts(ctx context.Context, orgID, clientID uuid.UUID, includeInactive bool) ([]*types.ClientContact, error)
}

type contactService struct {
	db          *gorm.DB
	log         *logger.Logger
	clientRepo  repos.ClientRepo
	contactRepo repos.ContactRepo
	audit       AuditRecorder
}

func NewContactService(db *gorm.DB, log *logger.Logger, clientRepo repos.ClientRepo, contactRepo repos.ContactRepo, audit AuditRecorder) ContactService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &contactService{
		db:          db,
		log:         log.With("service", "ContactService"),
		clientRepo:  clientRepo,
		contactRepo: contactRepo,
		audit:       audit,
	}
}

var errClientMissing = errors.New("client missing")

func (s *contactService) CreateContact(ctx context.Context, caller *Caller, in ContactInput, clientID, orgID uuid.UUID) Result {
	if err := validate.Struct(in); err != nil {
		return invalid(err)
	}
	if !caller.Authenticated() {
		return unauthorized()
	}

	var created *types.ClientContact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cl, err := s.clientRepo.GetByID(dbc, orgID, clientID)
		if err != nil {
			return err
		}
		if cl == nil {
			return errClientMissing
		}
		if *in.IsPrimary {
			if _, err := s.contactRepo.ClearPrimary(dbc, orgID, clientID, uuid.Nil); err != nil {
				return err
			}
		}
		created, err = s.contactRepo.Create(dbc, &types.ClientContact{
			ClientID:               clientID,
			OrganizationID:         orgID,
			FirstName:              in.FirstName,
			LastName:               in.LastName,
			Email:                  in.Email,
			Phone:                  in.Phone,
			Position:               in.Position,
			Department:             in.Department,
			PreferredContactMethod: in.PreferredContactMethod,
			Timezone:               in.Timezone,
			IsPrimary:              *in.IsPrimary,
			IsActive:               *in.IsActive,
		})
		return err
	})
	switch {
	case errors.Is(err, errClientMissing):
		return notFound(msgClientNotFound)
	case db.IsUniqueViolation(err):
		return s.primaryConflict(ctx, caller, actionCreate, uuid.Nil, orgID, err)
	case err != nil:
		return s.contactFailure(ctx, caller, actionCreate, uuid.Nil, orgID, err)
	case created == nil:
		return failed(KindInternal, msgContactNotCreated)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionCreate,
		Resource:       resourceContact,
		ResourceID:     created.ID.String(),
		Message:        msgContactCreated,
		Metadata:       created,
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgContactCreated, idPtr(created.ID))
}

func (s *contactService) UpdateContact(ctx context.Context, caller *Caller, in ContactPatch, contactID, orgID uuid.UUID) Result {
	if err := validate.Struct(in); err != nil {
		return invalid(err)
	}
	if !caller.Authenticated() {
		return unauthorized()
	}

	var updated *types.ClientContact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.contactRepo.GetByID(dbc, orgID, contactID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.ErrNotFound
		}
		if err := s.requireLiveClient(dbc, orgID, existing.ClientID); err != nil {
			return err
		}
		if in.IsPrimary != nil && *in.IsPrimary {
			if _, err := s.contactRepo.ClearPrimary(dbc, orgID, existing.ClientID, existing.ID); err != nil {
				return err
			}
		}
		if err := s.contactRepo.UpdateFields(dbc, orgID, contactID, in.updates()); err != nil {
			return err
		}
		updated, err = s.contactRepo.GetByID(dbc, orgID, contactID)
		return err
	})
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return notFound(msgContactNotFound)
	case errors.Is(err, errClientMissing):
		return notFound(msgClientNotFound)
	case db.IsUniqueViolation(err):
		return s.primaryConflict(ctx, caller, actionUpdate, contactID, orgID, err)
	case err != nil:
		return s.contactFailure(ctx, caller, actionUpdate, contactID, orgID, err)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionUpdate,
		Resource:       resourceContact,
		ResourceID:     contactID.String(),
		Message:        msgContactUpdated,
		Metadata:       updated,
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgContactUpdated, idPtr(contactID))
}

// DeleteContact removes the row for good, unlike client deletion.
func (s *contactService) DeleteContact(ctx context.Context, caller *Caller, contactID, orgID uuid.UUID) Result {
	if !caller.Authenticated() {
		return unauthorized()
	}

	dbc := dbctx.New(ctx)
	existing, err := s.contactRepo.GetByID(dbc, orgID, contactID)
	if err != nil {
		return s.contactFailure(ctx, caller, actionDelete, contactID, orgID, err)
	}
	if existing == nil {
		return notFound(msgContactNotFound)
	}
	ok, err := s.contactRepo.Delete(dbc, orgID, contactID)
	if err != nil {
		return s.contactFailure(ctx, caller, actionDelete, contactID, orgID, err)
	}
	if !ok {
		return notFound(msgContactNotFound)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionDelete,
		Resource:       resourceContact,
		ResourceID:     contactID.String(),
		Message:        msgContactDeleted,
		Metadata:       existing,
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgContactDeleted, idPtr(contactID))
}

// SetPrimaryContact clears the client's current primary and promotes the
// target inside one transaction.
func (s *contactService) SetPrimaryContact(ctx context.Context, caller *Caller, contactID, orgID uuid.UUID) Result {
	if !caller.Authenticated() {
		return unauthorized()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.contactRepo.GetByID(dbc, orgID, contactID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.ErrNotFound
		}
		if err := s.requireLiveClient(dbc, orgID, existing.ClientID); err != nil {
			return err
		}
		if _, err := s.contactRepo.ClearPrimary(dbc, orgID, existing.ClientID, uuid.Nil); err != nil {
			return err
		}
		ok, err := s.contactRepo.SetPrimary(dbc, orgID, contactID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return notFound(msgContactNotFound)
	case errors.Is(err, errClientMissing):
		return notFound(msgClientNotFound)
	case db.IsUniqueViolation(err):
		return s.primaryConflict(ctx, caller, actionUpdate, contactID, orgID, err)
	case err != nil:
		return s.contactFailure(ctx, caller, actionUpdate, contactID, orgID, err)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionUpdate,
		Resource:       resourceContact,
		ResourceID:     contactID.String(),
		Message:        msgContactSetPrimary,
		OrganizationID: orgID,
		Caller:         caller,
	})
	return succeeded(msgPrimaryUpdated, idPtr(contactID))
}

func (s *contactService) ListContacts(ctx context.Context, orgID, clientID uuid.UUID, includeInactive bool) ([]*types.ClientContact, error) {
	return s.contactRepo.ListByClient(dbctx.New(ctx), orgID, clientID, includeInactive)
}

// requireLiveClient keeps contacts of a soft-deleted client read-only, so a
// later update cannot undo the deactivation done on delete.
func (s *contactService) requireLiveClient(dbc dbctx.Context, orgID, clientID uuid.UUID) error {
	cl, err := s.clientRepo.GetByID(dbc, orgID, clientID)
	if err != nil {
		return err
	}
	if cl == nil {
		return errClientMissing
	}
	return nil
}

// primaryConflict reports a lost race on the one-primary-per-client index.
func (s *contactService) primaryConflict(ctx context.Context, caller *Caller, action string, contactID, orgID uuid.UUID, err error) Result {
	s.log.Warn("primary contact conflict", "action", action, "contact_id", contactID.String(), "error", err)
	ev := AuditEvent{
		Action:         action,
		Resource:       resourceContact,
		OrganizationID: orgID,
		Caller:         caller,
	}
	if contactID != uuid.Nil {
		ev.ResourceID = contactID.String()
	}
	recordFailure(ctx, s.audit, ev, err)
	return conflict(msgPrimaryConflict)
}

func (s *contactService) contactFailure(ctx context.Context, caller *Caller, action string, contactID, orgID uuid.UUID, err error) Result {
	s.log.Error("contact mutation failed", "action", action, "contact_id", contactID.String(), "error", err)
	ev := AuditEvent{
		Action:         action,
		Resource:       resourceContact,
		OrganizationID: orgID,
		Caller:         caller,
	}
	if contactID != uuid.Nil {
		ev.ResourceID = contactID.String()
	}
	recordFailure(ctx, s.audit, ev, err)
	return internal(err)
}
