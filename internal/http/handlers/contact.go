package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/http/response"
	"github.com/yungbote/clientbase-backend/internal/services"
)

type ContactHandler struct {
	contactService services.ContactService
}

func NewContactHandler(contactService services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// GET /api/workspaces/:workspaceId/clients/:clientId/contacts?includeInactive=
func (h *ContactHandler) List(c *gin.Context) {
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	list, err := h.contactService.ListContacts(c.Request.Context(), middleware.WorkspaceID(c), clientID, includeInactive)
	if err != nil {
		internalError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contacts": list})
}

// POST /api/workspaces/:workspaceId/clients/:clientId/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	clientID, ok := uuidParam(c, "clientId")
	if !ok {
		return
	}
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := h.contactService.CreateContact(c.Request.Context(), middleware.CallerFrom(c), req, clientID, middleware.WorkspaceID(c))
	response.RespondResult(c, res, true)
}

// PATCH /api/workspaces/:workspaceId/contacts/:contactId
func (h *ContactHandler) Update(c *gin.Context) {
	contactID, ok := uuidParam(c, "contactId")
	if !ok {
		return
	}
	var req services.ContactPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res := h.contactService.UpdateContact(c.Request.Context(), middleware.CallerFrom(c), req, contactID, middleware.WorkspaceID(c))
	response.RespondResult(c, res, false)
}

// DELETE /api/workspaces/:workspaceId/contacts/:contactId
func (h *ContactHandler) Delete(c *gin.Context) {
	contactID, ok := uuidParam(c, "contactId")
	if !ok {
		return
	}
	res := h.contactService.DeleteContact(c.Request.Context(), middleware.CallerFrom(c), contactID, middleware.WorkspaceID(c))
	response.RespondResult(c, res, false)
}

// POST /api/workspaces/:workspaceId/contacts/:contactId/primary
func (h *ContactHandler) SetPrimary(c *gin.Context) {
	contactID, ok := uuidParam(c, "contactId")
	if !ok {
		return
	}
	res := h.contactService.SetPrimaryContact(c.Request.Context(), middleware.CallerFrom(c), contactID, middleware.WorkspaceID(c))
	response.RespondResult(c, res, false)
}
