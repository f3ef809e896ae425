package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kbr-silks-backend/internal/admingate"
	"kbr-silks-backend/internal/config"
	"kbr-silks-backend/internal/middleware"
)

func gateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	policy, err := admingate.NewPolicy([]string{"9573147399"}, "")
	require.NoError(t, err)
	store := middleware.NewSessionStore(&config.Config{SessionKey: []byte("0123456789abcdef0123456789abcdef")})

	router := gin.New()
	router.Use(middleware.Gate(store, policy))
	router.POST("/verify", func(c *gin.Context) {
		result := middleware.GateFrom(c).Verify(c.Query("candidate"))
		require.NoError(t, middleware.SaveSession(c))
		c.JSON(http.StatusOK, result)
	})
	router.GET("/admin", middleware.RequireVerified(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestGate_LockedByDefault(t *testing.T) {
	router := gateRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), admingate.AccessDeniedMessage)
}

func TestGate_VerifiedSessionCookieUnlocksAdmin(t *testing.T) {
	router := gateRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/verify?candidate=%2B91+95731+47399", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionName, cookies[0].Name)
	assert.Zero(t, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGate_TamperedCookieIsLocked(t *testing.T) {
	router := gateRouter(t)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionName, Value: "forged"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

type stubChecker struct {
	admin bool
	err   error
}

func (s stubChecker) IsAdmin(context.Context, string) (bool, error) {
	return s.admin, s.err
}

func adminRouter(checker middleware.AdminChecker, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
	})
	router.GET("/admin", middleware.RequireAdmin(checker), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		checker stubChecker
		userID  string
		want    int
	}{
		{"admin", stubChecker{admin: true}, "u-1", http.StatusNoContent},
		{"not admin", stubChecker{}, "u-1", http.StatusForbidden},
		{"no identity", stubChecker{admin: true}, "", http.StatusUnauthorized},
		{"lookup failure", stubChecker{err: errors.New("boom")}, "u-1", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			adminRouter(tt.checker, tt.userID).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
