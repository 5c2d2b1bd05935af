package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"voicenote/internal/app/auth"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// Authenticator resolves a session token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// RequireSession rejects requests without a valid session and stores the
// user id under UserIDKey.
func RequireSession(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticator.Authenticate(c.Request.Context(), auth.TokenFromRequest(c.Request))
		if err != nil {
			HandleError(c, err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireSession.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
