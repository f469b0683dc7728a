package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/platform/logger"
	"github.com/yungbote/clientbase-backend/internal/requestdata"
	"github.com/yungbote/clientbase-backend/internal/services"
)

// CallerResolver is the slice of the auth service the middleware needs.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*services.Caller, error)
}

type AuthMiddleware struct {
	log      *logger.Logger
	resolver CallerResolver
}

func NewAuthMiddleware(log *logger.Logger, resolver CallerResolver) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), resolver: resolver}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		caller, err := am.resolver.ResolveCaller(c.Request.Context(), tokenString)
		if err != nil || !caller.Authenticated() {
			am.log.Debug("token rejected", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Unauthorized", "code": "unauthorized"},
			})
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

// CallerFrom returns the caller attached by RequireAuth, or nil.
func CallerFrom(c *gin.Context) *services.Caller {
	return requestdata.GetCaller(c.Request.Context())
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
