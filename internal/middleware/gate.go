package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"kbr-silks-backend/internal/admingate"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/errmsg"
	"kbr-silks-backend/internal/models"
	"kbr-silks-backend/internal/services"
)

const (
	SessionName = "kbr_admin"

	gateKey    = "admin_gate"
	sessionKey = "admin_session"
)

// NewSessionStore returns a cookie store whose cookies end with the browser
// session.
func NewSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore(cfg.SessionKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
	return store
}

// Gate attaches the admin gate for this browser session to the context.
func Gate(store sessions.Store, policy admingate.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, SessionName)
		if err != nil {
			// Undecodable cookie: start from a fresh session.
			slog.DebugContext(c.Request.Context(), "discarding admin session", "error", err)
		}
		c.Set(sessionKey, session)
		c.Set(gateKey, admingate.New(policy, admingate.SessionStore{Session: session}))
		c.Next()
	}
}

// GateFrom returns the gate set by Gate, or a gate that is always locked.
func GateFrom(c *gin.Context) *admingate.Gate {
	if v, ok := c.Get(gateKey); ok {
		if g, ok := v.(*admingate.Gate); ok {
			return g
		}
	}
	return admingate.New(admingate.Policy{}, admingate.SessionStore{})
}

// SaveSession writes the session cookie. Call it before writing the body.
func SaveSession(c *gin.Context) error {
	v, ok := c.Get(sessionKey)
	if !ok {
		return admingate.ErrStoreUnavailable
	}
	session, ok := v.(*sessions.Session)
	if !ok || session == nil {
		return admingate.ErrStoreUnavailable
	}
	return session.Save(c.Request, c.Writer)
}

// RequireVerified rejects requests whose session has not passed the gate.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GateFrom(c).State() == admingate.StateLocked {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "admin verification required",
				Message: admingate.AccessDeniedMessage,
			})
			return
		}
		c.Next()
	}
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin checks the caller's backend role. It must run after
// AuthMiddleware.
func RequireAdmin(roles AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
			return
		}

		ok, err := roles.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(services.StatusCode(err), models.ErrorResponse{
				Error:   "failed to check role",
				Message: err.Error(),
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "forbidden",
				Message: errmsg.Messages[errmsg.CategoryNotAuthorized],
			})
			return
		}
		c.Next()
	}
}
