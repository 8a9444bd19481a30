// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts GET /logout for signed-in users only; anonymous visitors are
// sent to the login page by RequireSignedIn.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Get("/", h.ServeLogout)
	return r
}
