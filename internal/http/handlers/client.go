package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/http/response"
	"github.com/yungbote/clientbase-backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errClientNotFound = errors.New("Client not found")

type ClientHandler struct {
	clientService services.ClientService
	exportService services.ExportService
}

func NewClientHandler(clientService services.ClientService, exportService services.ExportService) *ClientHandler {
	return &ClientHandler{clientService: clientService, exportService: exportService}
}

// GET /api/workspaces/:workspaceId/clients?q=&status=&priority=
func (ch *ClientHandler) List(c *gin.Context) {
	list, err := ch.clientService.FilterClients(c.Request.Context(), middleware.WorkspaceID(c), services.ClientFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Query:    c.Query("q"),
	})
	if err != nil {
		internalError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clients": list})
}

// GET /api/workspaces/:workspaceId/clients/:clientId
func (ch *ClientHandler) Get(c *gin.Context) {
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	cl, err := ch.clientService.GetClient(c.Request.Context(), middleware.WorkspaceID(c), clientID)
	if err != nil {
		internalError(c, err)
		return
	}
	if cl == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", errClientNotFound)
		return
	}
	response.RespondOK(c, gin.H{"client": cl})
}

// POST /api/workspaces/:workspaceId/clients
func (ch *ClientHandler) Create(c *gin.Context) {
	var req services.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := ch.clientService.CreateClient(c.Request.Context(), middleware.CallerFrom(c), req, middleware.WorkspaceID(c))
	response.RespondResult(c, res, true)
}

// PUT /api/workspaces/:workspaceId/clients/:clientId
func (ch *ClientHandler) Update(c *gin.Context) {
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	var req services.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := ch.clientService.UpdateClient(c.Request.Context(), middleware.CallerFrom(c), req, clientID, middleware.WorkspaceID(c))
	response.RespondResult(c, res, false)
}

// DELETE /api/workspaces/:workspaceId/clients/:clientId
// body (optional): { "deleteReason": "..." }
func (ch *ClientHandler) Delete(c *gin.Context) {
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	var req struct {
		DeleteReason *string `json:"deleteReason"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	res := ch.clientService.DeleteClient(c.Request.Context(), middleware.CallerFrom(c), clientID, middleware.WorkspaceID(c), req.DeleteReason)
	response.RespondResult(c, res, false)
}

// POST /api/workspaces/:workspaceId/clients/:clientId/touch
// body (optional): { "at": "2026-01-02T15:04:05Z" }
func (ch *ClientHandler) Touch(c *gin.Context) {
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	var req struct {
		At time.Time `json:"at"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	res := ch.clientService.TouchLastContact(c.Request.Context(), middleware.CallerFrom(c), clientID, middleware.WorkspaceID(c), req.At)
	response.RespondResult(c, res, false)
}

// GET /api/workspaces/:workspaceId/clients/export
func (ch *ClientHandler) Export(c *gin.Context) {
	raw, err := ch.exportService.ExportClients(c.Request.Context(), middleware.WorkspaceID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	name := fmt.Sprintf("clients-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, raw)
}
