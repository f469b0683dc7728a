package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/clientbase-backend/internal/pkg/ctxutil"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
	"github.com/yungbote/clientbase-backend/internal/services"
)

type fakeResolver struct {
	tokens map[string]*services.Caller
}

func (f fakeResolver) ResolveCaller(_ context.Context, token string) (*services.Caller, error) {
	if c, ok := f.tokens[token]; ok {
		return c, nil
	}
	return nil, errors.New("unauthorized: invalid token")
}

type fakeMembers struct {
	member map[uuid.UUID]bool
	err    error
}

func (f fakeMembers) IsMember(_ context.Context, _, orgID uuid.UUID) (bool, error) {
	return f.member[orgID], f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func newProtectedRouter(t *testing.T, members fakeMembers) (*gin.Engine, *services.Caller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	caller := &services.Caller{UserID: uuid.New(), SessionID: uuid.New()}
	log := testLogger(t)
	auth := NewAuthMiddleware(log, fakeResolver{tokens: map[string]*services.Caller{"good": caller}})
	ws := NewWorkspaceMiddleware(log, members)

	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(log))
	protected := r.Group("/api", auth.RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CallerFrom(c).UserID.String()})
	})
	scoped := protected.Group("/workspaces/:workspaceId", ws.RequireMember())
	scoped.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, WorkspaceID(c).String())
	})
	return r, caller
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	r, caller := newProtectedRouter(t, fakeMembers{})

	rec := serve(r, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"missing or invalid token","code":"unauthorized"}}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/me", "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, http.MethodGet, "/api/me", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), caller.UserID.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestRequireMember(t *testing.T) {
	mine, theirs := uuid.New(), uuid.New()
	r, _ := newProtectedRouter(t, fakeMembers{member: map[uuid.UUID]bool{mine: true}})

	rec := serve(r, http.MethodGet, "/api/workspaces/"+mine.String()+"/ping", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mine.String(), rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/workspaces/"+theirs.String()+"/ping", "good")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Workspace not found")

	rec = serve(r, http.MethodGet, "/api/workspaces/not-a-uuid/ping", "good")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	broken, _ := newProtectedRouter(t, fakeMembers{err: errors.New("db down")})
	rec = serve(broken, http.MethodGet, "/api/workspaces/"+mine.String()+"/ping", "good")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAttachTraceContextKeepsInboundIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.RequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	req.Header.Set("X-Trace-Id", "trace-456")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "trace-456", rec.Header().Get("X-Trace-Id"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	now = now.Add(limiterIdleTTL + 2*time.Minute)
	rl.Allow("b")
	assert.NotContains(t, rl.visitors, "a")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	limited := NewRateLimiter(1, 1)
	r.Use(limited.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/", "").Code)
	rec := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	open := gin.New()
	open.Use(NewRateLimiter(0, 0).Middleware())
	open.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, serve(open, http.MethodGet, "/", "").Code)
	}
}
