// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	RenderError(w, r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	RenderError(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderError writes status and renders the shared error page.
func RenderError(w http.ResponseWriter, r *http.Request, status int, heading, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	vm := viewdata.NewBaseVM(r, heading, backURL)
	vm.BackURL = backURL

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  vm,
		Heading: heading,
		Message: msg,
	})
}

// RenderNotFound shows a 404 page with msg.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	RenderError(w, r, http.StatusNotFound, "Not found", msg, backURL)
}
