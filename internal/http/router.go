package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/clientbase-backend/internal/http/handlers"
	httpMW "github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/observability"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics
	RateLimiter *httpMW.RateLimiter

	AuthMiddleware      *httpMW.AuthMiddleware
	WorkspaceMiddleware *httpMW.WorkspaceMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	WorkspaceHandler *httpH.WorkspaceHandler
	ClientHandler    *httpH.ClientHandler
	ContactHandler   *httpH.ContactHandler
	AnalyticsHandler *httpH.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(cfg.RateLimiter.Middleware())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/sign-up", cfg.AuthHandler.SignUp)
			api.POST("/auth/sign-in", cfg.AuthHandler.SignIn)
		}
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.POST("/auth/sign-out", cfg.AuthHandler.SignOut)
			protected.GET("/me", cfg.AuthHandler.Me)
		}
		if cfg.WorkspaceHandler != nil {
			protected.GET("/workspaces", cfg.WorkspaceHandler.List)
			protected.POST("/workspaces", cfg.WorkspaceHandler.Create)
			protected.POST("/workspaces/:workspaceId/select", cfg.WorkspaceHandler.Select)
		}
	}

	workspace := protected.Group("/workspaces/:workspaceId")
	if cfg.WorkspaceMiddleware != nil {
		workspace.Use(cfg.WorkspaceMiddleware.RequireMember())
	}
	{
		// Clients
		if cfg.ClientHandler != nil {
			workspace.GET("/clients", cfg.ClientHandler.List)
			workspace.POST("/clients", cfg.ClientHandler.Create)
			workspace.GET("/clients/export", cfg.ClientHandler.Export)
			workspace.GET("/clients/:clientId", cfg.ClientHandler.Get)
			workspace.PUT("/clients/:clientId", cfg.ClientHandler.Update)
			workspace.DELETE("/clients/:clientId", cfg.ClientHandler.Delete)
			workspace.POST("/clients/:clientId/touch", cfg.ClientHandler.Touch)
		}

		// Contacts
		if cfg.ContactHandler != nil {
			workspace.GET("/clients/:clientId/contacts", cfg.ContactHandler.List)
			workspace.POST("/clients/:clientId/contacts", cfg.ContactHandler.Create)
			workspace.PATCH("/contacts/:contactId", cfg.ContactHandler.Update)
			workspace.DELETE("/contacts/:contactId", cfg.ContactHandler.Delete)
			workspace.POST("/contacts/:contactId/primary", cfg.ContactHandler.SetPrimary)
		}

		// Analytics
		if cfg.AnalyticsHandler != nil {
			workspace.GET("/analytics", cfg.AnalyticsHandler.Dashboard)
			workspace.GET("/analytics/overview", cfg.AnalyticsHandler.Overview)
			workspace.GET("/analytics/status", cfg.AnalyticsHandler.Status)
			workspace.GET("/analytics/priority", cfg.AnalyticsHandler.Priority)
			workspace.GET("/analytics/growth", cfg.AnalyticsHandler.Growth)
			workspace.GET("/analytics/industries", cfg.AnalyticsHandler.Industries)
			workspace.GET("/analytics/engagement", cfg.AnalyticsHandler.Engagement)
			workspace.GET("/analytics/health", cfg.AnalyticsHandler.Health)
		}
	}

	return r
}
