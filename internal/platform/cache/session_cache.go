package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const sessionKeyPrefix = "clientbase:session:"

// SessionEntry is the cached projection of a session row and its user's role.
type SessionEntry struct {
	SessionID            uuid.UUID  `json:"session_id"`
	UserID               uuid.UUID  `json:"user_id"`
	Role                 string     `json:"role"`
	IPAddress            string     `json:"ip_address"`
	UserAgent            string     `json:"user_agent"`
	ActiveOrganizationID *uuid.UUID `json:"active_organization_id,omitempty"`
	ExpiresAt            time.Time  `json:"expires_at"`
	RevokedAt            *time.Time `json:"revoked_at,omitempty"`
}

func (e *SessionEntry) Valid(now time.Time) bool {
	return e != nil && e.RevokedAt == nil && now.Before(e.ExpiresAt)
}

type SessionCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, sessionID uuid.UUID) (*SessionEntry, error)
	Set(ctx context.Context, entry *SessionEntry, ttl time.Duration) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	Close() error
}

type redisSessionCache struct {
	log *logger.Logger
	rdb *redis.Client
}

// NewRedisSessionCache connects to addr and pings it once.
func NewRedisSessionCache(log *logger.Logger, addr, password string, db int) (SessionCache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewSessionCacheFromClient(log, rdb), nil
}

func NewSessionCacheFromClient(log *logger.Logger, rdb *redis.Client) SessionCache {
	return &redisSessionCache{log: log.With("cache", "RedisSessionCache"), rdb: rdb}
}

func (c *redisSessionCache) Get(ctx context.Context, sessionID uuid.UUID) (*SessionEntry, error) {
	raw, err := c.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var entry SessionEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.log.Warn("dropping undecodable session entry", "session_id", sessionID.String(), "error", err)
		_ = c.rdb.Del(ctx, sessionKey(sessionID)).Err()
		return nil, nil
	}
	return &entry, nil
}

func (c *redisSessionCache) Set(ctx context.Context, entry *SessionEntry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, sessionKey(entry.SessionID), raw, ttl).Err()
}

func (c *redisSessionCache) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return c.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

func (c *redisSessionCache) Close() error {
	return c.rdb.Close()
}

// NopSessionCache always misses. It stands in when REDIS_ADDR is unset.
type NopSessionCache struct{}

func (NopSessionCache) Get(context.Context, uuid.UUID) (*SessionEntry, error) { return nil, nil }
func (NopSessionCache) Set(context.Context, *SessionEntry, time.Duration) error {
	return nil
}
func (NopSessionCache) Delete(context.Context, uuid.UUID) error { return nil }
func (NopSessionCache) Close() error                            { return nil }

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}
