package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/applytrack/internal/app/features/logout"
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/dalemusser/applytrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cookieName = "applytrack-test"

func newSessionMgr(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", cookieName, "", 24*time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	return sm
}

func TestServeLogout(t *testing.T) {
	tests := []struct {
		name       string
		htmx       bool
		wantStatus int
		header     string
	}{
		{name: "browser", wantStatus: http.StatusSeeOther, header: "Location"},
		{name: "htmx", htmx: true, wantStatus: http.StatusOK, header: "HX-Redirect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := logout.NewHandler(newSessionMgr(t), zap.NewNop())

			req := testutil.NewAuthenticatedRequest("GET", "/logout", testutil.NewTestUser())
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			h.ServeLogout(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "/login?signed_out=1", rec.Header().Get(tt.header))
		})
	}
}

func TestServeLogout_ExpiresSessionCookie(t *testing.T) {
	sm := newSessionMgr(t)
	h := logout.NewHandler(sm, zap.NewNop())

	// Sign in first so there is a real cookie to clear.
	signIn := httptest.NewRecorder()
	require.NoError(t, sm.SignIn(signIn, httptest.NewRequest("POST", "/login", nil), "abc123"))

	req := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range signIn.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "expected a deletion cookie")
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRoutes_AnonymousSentToLogin(t *testing.T) {
	sm := newSessionMgr(t)
	router := logout.Routes(logout.NewHandler(sm, zap.NewNop()), sm)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?return=")
}
