package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "voicenote/internal/app/errors"
	"voicenote/internal/app/model"
	"voicenote/internal/app/repository"
)

// Identity is an OAuth identity provider.
type Identity interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (model.User, model.Account, error)
}

// Store is the persistence the auth service needs.
type Store interface {
	repository.UserDAO
	repository.SessionDAO
}

// Service signs users in and out.
type Service struct {
	identity Identity
	store    Store
	resolver *Resolver
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a Service.
func NewService(identity Identity, store Store, resolver *Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		identity: identity,
		store:    store,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

// LoginURL returns where to send the browser for state.
func (s *Service) LoginURL(state string) string {
	return s.identity.AuthCodeURL(state)
}

// Callback completes a sign-in: it exchanges code, upserts the user and
// issues a new session.
func (s *Service) Callback(ctx context.Context, code string) (*model.Session, error) {
	user, account, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindUnauthorized, "oauth exchange failed")
	}

	stored, err := s.store.UpsertOAuthUser(ctx, user, account)
	if err != nil {
		return nil, err
	}

	session := model.Session{
		SessionToken: uuid.NewString(),
		UserID:       stored.ID,
		Expires:      s.now().Add(SessionTTL).UTC(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", zap.String("user_id", stored.ID), zap.String("provider", account.Provider))
	return &session, nil
}

// Logout ends the session for token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// drop the row before the cache entry so a concurrent lookup cannot re-cache it
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return err
	}
	s.resolver.Forget(ctx, token)
	return nil
}

// Authenticate resolves token to a user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	return s.resolver.Resolve(ctx, token)
}

// CurrentUser returns the user behind token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, err
}
