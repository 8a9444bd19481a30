// internal/app/features/applications/routes.go
package applications

import (
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the application routes under whatever base path the caller
// chooses (typically "/applications" from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST
		pr.Get("/", h.ServeList)

		// CREATE
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		// CSV
		pr.Get("/export.csv", h.ServeExportCSV)
		pr.Get("/import", h.ServeImport)
		pr.Post("/import", h.HandleImport)

		// VIEW
		pr.Get("/{id}", h.ServeView)
		pr.Get("/{id}/resume", h.HandleResume)
	})

	return r
}
