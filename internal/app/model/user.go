package model

import "time"

// User is an identity created on first sign-in.
type User struct {
	ID            string     `json:"id"`
	Name          *string    `json:"name"`
	Email         string     `json:"email"`
	EmailVerified *time.Time `json:"emailVerified"`
	Image         *string    `json:"image"`
}

// Account links a User to an OAuth provider identity.
type Account struct {
	UserID            string
	Type              string
	Provider          string
	ProviderAccountID string
	AccessToken       string
	TokenType         string
	Scope             string
}

// Session is a server-side login session keyed by an opaque token.
type Session struct {
	SessionToken string
	UserID       string
	Expires      time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}
