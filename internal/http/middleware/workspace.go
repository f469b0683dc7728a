package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clientbase-backend/internal/http/response"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	workspaceParam = "workspaceId"
	workspaceKey   = "workspace_id"
)

var (
	errInvalidWorkspace  = errors.New("invalid workspace id")
	errUnauthorized      = errors.New("Unauthorized")
	errUnknown           = errors.New("An unknown error occurred")
	errWorkspaceNotFound = errors.New("Workspace not found")
)

type MembershipChecker interface {
	IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
}

type WorkspaceMiddleware struct {
	log     *logger.Logger
	members MembershipChecker
}

func NewWorkspaceMiddleware(log *logger.Logger, members MembershipChecker) *WorkspaceMiddleware {
	return &WorkspaceMiddleware{log: log.With("middleware", "WorkspaceMiddleware"), members: members}
}

// RequireMember admits only members of the :workspaceId organization. Non
// members get the same 404 as a workspace that does not exist.
func (wm *WorkspaceMiddleware) RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param(workspaceParam))
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_workspace_id", errInvalidWorkspace)
			c.Abort()
			return
		}
		caller := CallerFrom(c)
		if !caller.Authenticated() {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnauthorized)
			c.Abort()
			return
		}
		ok, err := wm.members.IsMember(c.Request.Context(), caller.UserID, orgID)
		if err != nil {
			wm.log.Error("membership check failed", "organization_id", orgID.String(), "error", err)
			response.RespondError(c, http.StatusInternalServerError, "internal_error", errUnknown)
			c.Abort()
			return
		}
		if !ok {
			response.RespondError(c, http.StatusNotFound, "not_found", errWorkspaceNotFound)
			c.Abort()
			return
		}
		c.Set(workspaceKey, orgID)
		c.Next()
	}
}

// WorkspaceID returns the organization admitted by RequireMember.
func WorkspaceID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(workspaceKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
