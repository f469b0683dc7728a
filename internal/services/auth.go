package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/clientbase-backend/internal/data/db"
	"github.com/yungbote/clientbase-backend/internal/data/repos"
	types "github.com/yungbote/clientbase-backend/internal/domain"
	"github.com/yungbote/clientbase-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/clientbase-backend/internal/pkg/errors"
	"github.com/yungbote/clientbase-backend/internal/pkg/validate"
	"github.com/yungbote/clientbase-backend/internal/platform/cache"
	"github.com/yungbote/clientbase-backend/internal/platform/logger"
)

const (
	defaultUserRole = "user"

	msgSignedUp           = "Signed up successfully"
	msgSignedIn           = "Signed in successfully"
	msgSignedOut          = "Signed out successfully"
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "Email is already registered"
)

type SignUpInput struct {
	Name     string `json:"name" validate:"required" message:"required=Name is required"`
	Email    string `json:"email" validate:"required,email" message:"required=Invalid email address|email=Invalid email address"`
	Password string `json:"password" validate:"required,min=8" message:"required=Password must be at least 8 characters|min=Password must be at least 8 characters"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email" message:"required=Invalid email address|email=Invalid email address"`
	Password string `json:"password" validate:"required" message:"required=Password is required"`
}

// AuthToken is what sign-up and sign-in hand back to the client.
type AuthToken struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *types.User `json:"user"`
}

type AuthConfig struct {
	JWTSecret       string
	SessionTTL      time.Duration
	SessionCacheTTL time.Duration
	BcryptCost      int
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AuthService issues and resolves sessions. It is deliberately small: one
// bearer token per session, no refresh flow.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput, ip, userAgent string) (*AuthToken, Result)
	SignIn(ctx context.Context, in SignInInput, ip, userAgent string) (*AuthToken, Result)
	SignOut(ctx context.Context, caller *Caller) Result
	ResolveCaller(ctx context.Context, token string) (*Caller, error)
	CurrentUser(ctx context.Context, caller *Caller) (*types.User, error)
}

type authService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	sessionRepo repos.SessionRepo
	sessions    cache.SessionCache
	cfg         AuthConfig
	now         func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, sessionRepo repos.SessionRepo, sessions cache.SessionCache, cfg AuthConfig) AuthService {
	if sessions == nil {
		sessions = cache.NopSessionCache{}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.SessionCacheTTL <= 0 {
		cfg.SessionCacheTTL = 5 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		db:          db,
		log:         log.With("service", "AuthService"),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessions:    sessions,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (as *authService) SignUp(ctx context.Context, in SignUpInput, ip, userAgent string) (*AuthToken, Result) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, internal(fmt.Errorf("hash password: %w", err))
	}

	var (
		user    *types.User
		session *types.Session
	)
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.ErrConflict
		}
		user, err = as.userRepo.Create(dbc, &types.User{
			Name:     in.Name,
			Email:    in.Email,
			Password: string(hash),
			Role:     defaultUserRole,
		})
		if err != nil {
			return err
		}
		session, err = as.openSession(dbc, user.ID, ip, userAgent)
		return err
	})
	if errors.Is(err, apperr.ErrConflict) || db.IsUniqueViolation(err) {
		return nil, conflict(msgEmailTaken)
	}
	if err != nil {
		as.log.Error("sign up failed", "error", err)
		return nil, internal(err)
	}
	return as.issue(user, session, msgSignedUp)
}

func (as *authService) SignIn(ctx context.Context, in SignInInput, ip, userAgent string) (*AuthToken, Result) {
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	dbc := dbctx.New(ctx)
	user, err := as.userRepo.GetByEmail(dbc, in.Email)
	if err != nil {
		as.log.Error("user lookup failed", "error", err)
		return nil, internal(err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, failed(KindUnauthorized, msgInvalidCredentials)
	}
	session, err := as.openSession(dbc, user.ID, ip, userAgent)
	if err != nil {
		as.log.Error("open session failed", "user_id", user.ID.String(), "error", err)
		return nil, internal(err)
	}
	return as.issue(user, session, msgSignedIn)
}

func (as *authService) SignOut(ctx context.Context, caller *Caller) Result {
	if !caller.Authenticated() {
		return unauthorized()
	}
	if err := as.sessionRepo.Revoke(dbctx.New(ctx), caller.SessionID, as.now()); err != nil {
		as.log.Error("revoke session failed", "session_id", caller.SessionID.String(), "error", err)
		return internal(err)
	}
	if err := as.sessions.Delete(ctx, caller.SessionID); err != nil {
		as.log.Warn("session cache evict failed", "session_id", caller.SessionID.String(), "error", err)
	}
	return succeeded(msgSignedOut, nil)
}

// ResolveCaller turns a bearer token into a Caller. The session is read from
// the cache first; a cache failure falls through to the database.
func (as *authService) ResolveCaller(ctx context.Context, token string) (*Caller, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", apperr.ErrUnauthorized)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session", apperr.ErrUnauthorized)
	}

	entry, err := as.sessions.Get(ctx, sessionID)
	if err != nil {
		as.log.Warn("session cache read failed", "session_id", sessionID.String(), "error", err)
		entry = nil
	}
	if entry == nil {
		entry, err = as.loadSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
	now := as.now()
	if entry == nil || !entry.Valid(now) || entry.UserID != userID {
		return nil, fmt.Errorf("%w: session expired or revoked", apperr.ErrUnauthorized)
	}
	return &Caller{
		UserID:               entry.UserID,
		Role:                 entry.Role,
		SessionID:            entry.SessionID,
		IPAddress:            entry.IPAddress,
		UserAgent:            entry.UserAgent,
		ActiveOrganizationID: entry.ActiveOrganizationID,
	}, nil
}

func (as *authService) CurrentUser(ctx context.Context, caller *Caller) (*types.User, error) {
	if !caller.Authenticated() {
		return nil, apperr.ErrUnauthorized
	}
	u, err := as.userRepo.GetByID(dbctx.New(ctx), caller.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (as *authService) loadSession(ctx context.Context, sessionID uuid.UUID) (*cache.SessionEntry, error) {
	dbc := dbctx.New(ctx)
	s, err := as.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	u, err := as.userRepo.GetByID(dbc, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	entry := &cache.SessionEntry{
		SessionID:            s.ID,
		UserID:               s.UserID,
		Role:                 u.Role,
		IPAddress:            s.IPAddress,
		UserAgent:            s.UserAgent,
		ActiveOrganizationID: s.ActiveOrganizationID,
		ExpiresAt:            s.ExpiresAt,
		RevokedAt:            s.RevokedAt,
	}
	if ttl := min(as.cfg.SessionCacheTTL, time.Until(s.ExpiresAt)); ttl > 0 && entry.RevokedAt == nil {
		if err := as.sessions.Set(ctx, entry, ttl); err != nil {
			as.log.Warn("session cache write failed", "session_id", s.ID.String(), "error", err)
		}
	}
	return entry, nil
}

func (as *authService) openSession(dbc dbctx.Context, userID uuid.UUID, ip, userAgent string) (*types.Session, error) {
	return as.sessionRepo.Create(dbc, &types.Session{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: as.now().Add(as.cfg.SessionTTL).UTC(),
	})
}

func (as *authService) issue(user *types.User, session *types.Session, message string) (*AuthToken, Result) {
	claims := sessionClaims{
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(as.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.cfg.JWTSecret))
	if err != nil {
		as.log.Error("sign token failed", "user_id", user.ID.String(), "error", err)
		return nil, internal(err)
	}
	return &AuthToken{Token: signed, ExpiresAt: session.ExpiresAt, User: user}, succeeded(message, idPtr(user.ID))
}
