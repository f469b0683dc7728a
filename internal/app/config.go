package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/yungbote/clientbase-backend/internal/data/db"
)

type Config struct {
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"clientbase-backend"`
	Version     string `env:"SERVICE_VERSION"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresDSN      string `env:"POSTGRES_DSN"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"clientbase"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	JWTSecretKey    string        `env:"JWT_SECRET_KEY"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
}

const devJWTSecret = "clientbase-dev-secret"

// LoadConfig reads an optional .env, then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return parseConfig(nil)
}

// parseConfig parses from environment, or from vars when it is non-nil.
func parseConfig(vars map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET_KEY is required in %s", c.Environment)
		}
		c.JWTSecretKey = devJWTSecret
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
	return nil
}

func (c Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "dev", "development", "local", "test":
		return true
	}
	return false
}

// DatabaseDSN prefers POSTGRES_DSN and otherwise assembles a URL from the
// POSTGRES_* parts. For sqlite the DSN is passed through as-is.
func (c Config) DatabaseDSN() string {
	if dsn := strings.TrimSpace(c.PostgresDSN); dsn != "" || c.DBDriver == db.DriverSQLite {
		return dsn
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresName,
	}
	if c.PostgresPassword != "" {
		u.User = url.UserPassword(c.PostgresUser, c.PostgresPassword)
	} else {
		u.User = url.User(c.PostgresUser)
	}
	if c.PostgresSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.PostgresSSLMode}}.Encode()
	}
	return u.String()
}
