// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
		// HTMX partial, re-requested whenever the event stream says "changed".
		pr.Get("/stats", h.ServeStats)
	})

	return r
}
