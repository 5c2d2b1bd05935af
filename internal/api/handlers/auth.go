package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "voicenote/internal/api/errors"
	"voicenote/internal/api/dto"
	"voicenote/internal/api/middleware"
	"voicenote/internal/api/services"
	"voicenote/internal/app/auth"
)

const (
	stateCookie = "oauth_state"
	stateMaxAge = 10 * 60
)

// AuthHandler handles the GitHub sign-in flow and session endpoints
type AuthHandler struct {
	service     services.AuthService
	secure      bool
	afterSignIn string
}

// NewAuthHandler creates a new auth handler. afterSignIn is where the browser
// lands once the session cookie is set.
func NewAuthHandler(service services.AuthService, secureCookies bool, afterSignIn string) *AuthHandler {
	if afterSignIn == "" {
		afterSignIn = "/"
	}
	return &AuthHandler{
		service:     service,
		secure:      secureCookies,
		afterSignIn: afterSignIn,
	}
}

// Login handles GET /auth/github/login
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	h.setCookie(c, stateCookie, state, stateMaxAge)
	c.Redirect(http.StatusFound, h.service.LoginURL(state))
}

// Callback handles GET /auth/github/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	if c.Query("error") != "" {
		middleware.HandleError(c, apierrors.NewUnauthorizedError("Sign-in was cancelled"))
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		middleware.HandleError(c, apierrors.NewUnauthorizedError("Invalid OAuth state"))
		return
	}
	h.setCookie(c, stateCookie, "", -1)

	code := c.Query("code")
	if code == "" {
		middleware.HandleError(c, apierrors.NewBadRequestError("Missing authorization code"))
		return
	}

	session, err := h.service.Callback(c.Request.Context(), code)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.setCookie(c, auth.SessionCookie, session.SessionToken, int(time.Until(session.Expires).Seconds()))
	c.Redirect(http.StatusFound, h.afterSignIn)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), auth.TokenFromRequest(c.Request)); err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.setCookie(c, auth.SessionCookie, "", -1)
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// Session handles GET /auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	user, err := h.service.CurrentUser(c.Request.Context(), auth.TokenFromRequest(c.Request))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(user))
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secure, true)
}
