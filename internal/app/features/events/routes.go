// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the event stream. Mount it outside any request-timeout
// middleware; streams stay open until the client leaves.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeEvents)
	})
	return r
}
