// internal/app/features/files/routes.go
package files

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.ServeFile)
	return r
}
