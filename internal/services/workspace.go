package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/db"
	"github.com/yungbote/clientbase-backend/internal/data/repos"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/domain/org"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/clientbase-backend/internal/pkg/errors"
	"github.com/yungbote/clientbase-backend/internal/pkg/validate"
	"github.com/yungbote/clientbase-backend/internal/platform/cache"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	resourceWorkspace     = "workspace"
	actionWorkspaceCreate = "workspace.create"

	msgWorkspaceCreated  = "Workspace created successfully"
	msgWorkspaceSelected = "Workspace selected successfully"
	msgWorkspaceNotFound = "Workspace not found"
	msgSlugTaken         = "Slug is already taken"
)

type WorkspaceInput struct {
	Name string `json:"name" validate:"required" message:"required=Name is required"`
	Slug string `json:"slug" validate:"required,slug" message:"required=Slug is required|slug=Slug must only contain lowercase letters, numbers, and hyphens"`
	Logo string `json:"logo"`
}

type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, caller *Caller, in WorkspaceInput) Result
	ListWorkspaces(ctx context.Context, caller *Caller) ([]*types.Organization, error)
	SelectWorkspace(ctx context.Context, caller *Caller, orgID uuid.UUID) Result
	IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
}

type workspaceService struct {
	db          *gorm.DB
	log         *logger.Logger
	orgRepo     repos.OrganizationRepo
	sessionRepo repos.SessionRepo
	sessions    cache.SessionCache
	audit       AuditRecorder
}

func NewWorkspaceService(db *gorm.DB, log *logger.Logger, orgRepo repos.OrganizationRepo, sessionRepo repos.SessionRepo, sessions cache.SessionCache, audit AuditRecorder) WorkspaceService {
	if sessions == nil {
		sessions = cache.NopSessionCache{}
	}
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &workspaceService{
		db:          db,
		log:         log.With("service", "WorkspaceService"),
		orgRepo:     orgRepo,
		sessionRepo: sessionRepo,
		sessions:    sessions,
		audit:       audit,
	}
}

// CreateWorkspace creates the organization and the caller's owner membership
// together.
func (s *workspaceService) CreateWorkspace(ctx context.Context, caller *Caller, in WorkspaceInput) Result {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validate.Struct(in); err != nil {
		return invalid(err)
	}
	if !caller.Authenticated() {
		return unauthorized()
	}

	var created *types.Organization
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		taken, err := s.orgRepo.SlugExists(dbc, in.Slug)
		if err != nil {
			return err
		}
		if taken {
			return apperr.ErrConflict
		}
		created, err = s.orgRepo.Create(dbc, &types.Organization{Name: in.Name, Slug: in.Slug, Logo: in.Logo})
		if err != nil {
			return err
		}
		_, err = s.orgRepo.AddMember(dbc, &types.Member{
			OrganizationID: created.ID,
			UserID:         caller.UserID,
			Role:           org.RoleOwner,
		})
		return err
	})
	if errors.Is(err, apperr.ErrConflict) || db.IsUniqueViolation(err) {
		return conflict(msgSlugTaken)
	}
	if err != nil {
		s.log.Error("create workspace failed", "slug", in.Slug, "error", err)
		recordFailure(ctx, s.audit, AuditEvent{Action: actionWorkspaceCreate, Resource: resourceWorkspace, Caller: caller}, err)
		return internal(err)
	}

	_ = s.audit.Record(ctx, AuditEvent{
		Action:         actionWorkspaceCreate,
		Resource:       resourceWorkspace,
		ResourceID:     created.ID.String(),
		Message:        msgWorkspaceCreated,
		Metadata:       created,
		OrganizationID: created.ID,
		Caller:         caller,
	})
	return succeeded(msgWorkspaceCreated, idPtr(created.ID))
}

func (s *workspaceService) ListWorkspaces(ctx context.Context, caller *Caller) ([]*types.Organization, error) {
	if !caller.Authenticated() {
		return nil, apperr.ErrUnauthorized
	}
	return s.orgRepo.ListForUser(dbctx.New(ctx), caller.UserID)
}

// SelectWorkspace records orgID as the session's active workspace. Callers
// that are not members get the same answer as for a missing workspace.
func (s *workspaceService) SelectWorkspace(ctx context.Context, caller *Caller, orgID uuid.UUID) Result {
	if !caller.Authenticated() {
		return unauthorized()
	}
	dbc := dbctx.New(ctx)
	member, err := s.orgRepo.IsMember(dbc, orgID, caller.UserID)
	if err != nil {
		s.log.Error("membership lookup failed", "organization_id", orgID.String(), "error", err)
		return internal(err)
	}
	if !member {
		return notFound(msgWorkspaceNotFound)
	}
	if caller.SessionID != uuid.Nil {
		if err := s.sessionRepo.SetActiveOrganization(dbc, caller.SessionID, orgID); err != nil {
			s.log.Error("set active organization failed", "session_id", caller.SessionID.String(), "error", err)
			return internal(err)
		}
		if err := s.sessions.Delete(ctx, caller.SessionID); err != nil {
			s.log.Warn("session cache evict failed", "session_id", caller.SessionID.String(), "error", err)
		}
	}
	return succeeded(msgWorkspaceSelected, idPtr(orgID))
}

func (s *workspaceService) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	return s.orgRepo.IsMember(dbctx.New(ctx), orgID, userID)
}
