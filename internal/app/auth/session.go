package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/repository"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "session_token"

// SessionTTL is how long a new session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// TokenFromRequest returns the session token from the cookie or an
// "Authorization: Bearer" header, or "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// SessionCache remembers token -> user id lookups.
type SessionCache interface {
	Get(ctx context.Context, token string) (string, bool, error)
	Set(ctx context.Context, token, userID string, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// Resolver turns a session token into the owning user id.
type Resolver struct {
	sessions repository.SessionDAO
	cache    SessionCache
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(sessions repository.SessionDAO, cache SessionCache, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		sessions: sessions,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Resolve returns the user id for token. Missing, unknown and expired sessions
// are Unauthorized.
func (r *Resolver) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrUnauthorized
	}

	if r.cache != nil {
		userID, ok, err := r.cache.Get(ctx, token)
		if err != nil {
			r.logger.Warn("session cache lookup failed", zap.Error(err))
		} else if ok {
			return userID, nil
		}
	}

	session, err := r.sessions.GetSession(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}

	now := r.now()
	if session.Expired(now) {
		return "", apperrors.ErrSessionExpired
	}

	if r.cache != nil && r.cacheTTL > 0 {
		ttl := r.cacheTTL
		if left := session.Expires.Sub(now); left < ttl {
			ttl = left
		}
		if err := r.cache.Set(ctx, token, session.UserID, ttl); err != nil {
			r.logger.Warn("session cache store failed", zap.Error(err))
		}
	}
	return session.UserID, nil
}

// Forget drops token from the cache.
func (r *Resolver) Forget(ctx context.Context, token string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, token); err != nil {
		r.logger.Warn("session cache delete failed", zap.Error(err))
	}
}
