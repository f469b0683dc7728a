package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/http/response"
	"github.com/yungbote/clientbase-backend/internal/services"
)

type WorkspaceHandler struct {
	workspaceService services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// GET /api/workspaces
func (wh *WorkspaceHandler) List(c *gin.Context) {
	list, err := wh.workspaceService.ListWorkspaces(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		internalError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"workspaces": list})
}

// POST /api/workspaces
func (wh *WorkspaceHandler) Create(c *gin.Context) {
	var req services.WorkspaceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	response.RespondResult(c, wh.workspaceService.CreateWorkspace(c.Request.Context(), middleware.CallerFrom(c), req), true)
}

// POST /api/workspaces/:workspaceId/select
func (wh *WorkspaceHandler) Select(c *gin.Context) {
	orgID, ok := uuidParam(c, "workspaceId")
	if !ok {
		return
	}
	response.RespondResult(c, wh.workspaceService.SelectWorkspace(c.Request.Context(), middleware.CallerFrom(c), orgID), false)
}
