package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/http/response"
	apperr "github.com/yungbote/clientbase-backend/internal/pkg/errors"
	"github.com/yungbote/clientbase-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/auth/sign-up
func (ah *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	tok, res := ah.authService.SignUp(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	respondToken(c, tok, res, http.StatusCreated)
}

// POST /api/auth/sign-in
func (ah *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	tok, res := ah.authService.SignIn(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	respondToken(c, tok, res, http.StatusOK)
}

// POST /api/auth/sign-out
func (ah *AuthHandler) SignOut(c *gin.Context) {
	response.RespondResult(c, ah.authService.SignOut(c.Request.Context(), middleware.CallerFrom(c)), false)
}

// GET /api/me
func (ah *AuthHandler) Me(c *gin.Context) {
	me, err := ah.authService.CurrentUser(c.Request.Context(), middleware.CallerFrom(c))
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperr.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("User not found"))
	case err != nil:
		internalError(c, err)
	default:
		response.RespondOK(c, gin.H{"me": me})
	}
}

func respondToken(c *gin.Context, tok *services.AuthToken, res services.Result, status int) {
	if !res.Success || tok == nil {
		response.RespondResult(c, res, false)
		return
	}
	c.JSON(status, gin.H{
		"success":    true,
		"message":    res.Message,
		"token":      tok.Token,
		"expires_at": tok.ExpiresAt,
		"user":       tok.User,
	})
}
