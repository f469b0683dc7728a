package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/repos"
	apphttp "github.com/yungbote/clientbase-backend/internal/http"
	httpH "github.com/yungbote/clientbase-backend/internal/http/handlers"
	httpMW "github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/observability"
	"github.com/yungbote/clientbase-backend/internal/platform/cache"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
	"github.com/yungbote/clientbase-backend/internal/services"
)

type Repos struct {
	User         repos.UserRepo
	Session      repos.SessionRepo
	Organization repos.OrganizationRepo
	Client       repos.ClientRepo
	Contact      repos.ContactRepo
	AuditLog     repos.AuditLogRepo
	Analytics    repos.AnalyticsRepo
}

type Services struct {
	Audit     services.AuditRecorder
	Auth      services.AuthService
	Workspace services.WorkspaceService
	Client    services.ClientService
	Contact   services.ContactService
	Analytics services.AnalyticsService
	Export    services.ExportService
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Workspace *httpH.WorkspaceHandler
	Client    *httpH.ClientHandler
	Contact   *httpH.ContactHandler
	Analytics *httpH.AnalyticsHandler
}

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	Workspace   *httpMW.WorkspaceMiddleware
	RateLimiter *httpMW.RateLimiter
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Session:      repos.NewSessionRepo(db, log),
		Organization: repos.NewOrganizationRepo(db, log),
		Client:       repos.NewClientRepo(db, log),
		Contact:      repos.NewContactRepo(db, log),
		AuditLog:     repos.NewAuditLogRepo(db, log),
		Analytics:    repos.NewAnalyticsRepo(db, log),
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, sessions cache.SessionCache, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	audit := services.CountAuditFailures(services.NewAuditRecorder(log, r.AuditLog), metrics)
	return Services{
		Audit: audit,
		Auth: services.NewAuthService(db, log, r.User, r.Session, sessions, services.AuthConfig{
			JWTSecret:       cfg.JWTSecretKey,
			SessionTTL:      cfg.SessionTTL,
			SessionCacheTTL: cfg.SessionCacheTTL,
		}),
		Workspace: services.NewWorkspaceService(db, log, r.Organization, r.Session, sessions, audit),
		Client:    services.NewClientService(db, log, r.Client, r.Contact, audit),
		Contact:   services.NewContactService(db, log, r.Client, r.Contact, audit),
		Analytics: services.NewAnalyticsService(log, r.Analytics, r.Client),
		Export:    services.NewExportService(log, r.Client),
	}
}

func wireHandlers(log *logger.Logger, db httpH.Pinger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Auth:      httpH.NewAuthHandler(s.Auth),
		Workspace: httpH.NewWorkspaceHandler(s.Workspace),
		Client:    httpH.NewClientHandler(s.Client, s.Export),
		Contact:   httpH.NewContactHandler(s.Contact),
		Analytics: httpH.NewAnalyticsHandler(s.Analytics),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, s.Auth),
		Workspace:   httpMW.NewWorkspaceMiddleware(log, s.Workspace),
		RateLimiter: httpMW.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) apphttp.RouterConfig {
	rc := apphttp.RouterConfig{
		Log:                 log,
		CORSOrigins:         cfg.CORSOrigins,
		Metrics:             metrics,
		RateLimiter:         mw.RateLimiter,
		AuthMiddleware:      mw.Auth,
		WorkspaceMiddleware: mw.Workspace,
		HealthHandler:       h.Health,
		AuthHandler:         h.Auth,
		WorkspaceHandler:    h.Workspace,
		ClientHandler:       h.Client,
		ContactHandler:      h.Contact,
		AnalyticsHandler:    h.Analytics,
	}
	if cfg.OtelEnabled {
		rc.ServiceName = cfg.ServiceName
	}
	return rc
}
