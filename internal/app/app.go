package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/db"
	apphttp "github.com/yungbote/clientbase-backend/internal/http"
	"github.com/yungbote/clientbase-backend/internal/observability"
	"github.com/yungbote/clientbase-backend/internal/platform/cache"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	sessions     cache.SessionCache
	otelShutdown func(context.Context) error
}

// New builds the application from the environment. Callers own Close.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Starting", "service", cfg.ServiceName, "environment", cfg.Environment)

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	pg, err := db.NewPostgresService(log, db.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN()})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := pg.DB()
	sqlDB, err := theDB.DB()
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("database handle: %w", err)
	}

	sessions := openSessionCache(log, cfg)
	metrics := observability.NewMetrics()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, sessions, metrics)
	handlerset := wireHandlers(log, sqlDB, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := apphttp.NewServer(routerConfig(log, cfg, metrics, handlerset, middleware))

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		pg:           pg,
		sessions:     sessions,
		otelShutdown: shutdownOtel,
	}, nil
}

// openSessionCache falls back to the no-op cache when Redis is unset or
// unreachable; sessions are then read from the database on every request.
func openSessionCache(log *logger.Logger, cfg Config) cache.SessionCache {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR unset, session cache disabled")
		return cache.NopSessionCache{}
	}
	c, err := cache.NewRedisSessionCache(log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn("Redis unavailable, session cache disabled", "addr", cfg.RedisAddr, "error", err)
		return cache.NopSessionCache{}
	}
	return c
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts the
// server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		errCh <- a.Server.Run(a.Cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.Log.Warn("session cache close failed", "error", err)
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
