package home_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/applytrack/internal/app/features/home"
	"github.com/dalemusser/applytrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// renderSafely runs the handler and swallows template panics, since the
// shared layout is not loaded in unit tests.
func renderSafely(h http.HandlerFunc, rec *httptest.ResponseRecorder, req *http.Request) {
	defer func() { _ = recover() }()
	h(rec, req)
}

func TestServeRoot(t *testing.T) {
	h := home.NewHandler(zap.NewNop())

	t.Run("anonymous sees landing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderSafely(h.ServeRoot, rec, httptest.NewRequest("GET", "/", nil))
		assert.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("signed in goes to dashboard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeRoot(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.NewTestUser()))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}

func TestRoutes_MountsRoot(t *testing.T) {
	router := home.Routes(home.NewHandler(zap.NewNop()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.NewTestUser()))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
