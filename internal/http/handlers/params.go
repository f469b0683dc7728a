package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/clientbase-backend/internal/http/response"
)

var errUnknown = errors.New("An unknown error occurred")

// uuidParam parses a path parameter, answering 400 itself when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindOptionalJSON binds the body when one was sent.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	response.RespondError(c, http.StatusInternalServerError, "internal_error", errUnknown)
}
