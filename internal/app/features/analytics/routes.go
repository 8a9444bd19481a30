// internal/app/features/analytics/routes.go
package analytics

import (
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeAnalytics)
		pr.Get("/data", h.ServeData)
	})
	return r
}
