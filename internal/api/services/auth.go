package services

import "voicenote/internal/app/auth"

var _ AuthService = (*auth.Service)(nil)

// NewAuthService exposes the auth service to handlers.
func NewAuthService(svc *auth.Service) AuthService {
	return svc
}
