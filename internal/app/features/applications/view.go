// internal/app/features/applications/view.go
package applications

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/attachments"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/navigation"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadOwned fetches the {id} record for the signed-in user. Another user's
// record is reported as not found.
func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Application, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return models.Application{}, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad application id", err, "Invalid application id.", "/applications")
		return models.Application{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	app, err := h.Apps.GetByOwner(ctx, uid, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "application not found", err, "Application not found.", "/applications")
		return models.Application{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load application failed", err, "A database error occurred.", "/applications")
		return models.Application{}, false
	}
	return app, true
}

// ServeView shows one application.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	app, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	vm := viewdata.NewBaseVM(r, app.JobTitle, "/applications")
	vm.BackURL = navigation.SafeBackURL(r, navigation.ApplicationsBackURL)
	templates.Render(w, r, "application_view", viewData{
		BaseVM: vm,
		App:    app,
	})
}

// HandleResume redirects to a time-limited download link for the resume.
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	app, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if !app.HasResume() {
		h.ErrLog.LogNotFound(w, r, "application has no resume", nil, "No resume was uploaded with this application.", "/applications/"+app.ID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	link, err := h.Files.SignedURL(ctx, app.ResumePath, h.ResumeURLTTL)
	if errors.Is(err, attachments.ErrNotFound) {
		h.Log.Warn("resume missing from store", zap.String("key", app.ResumePath))
		h.ErrLog.LogNotFound(w, r, "resume missing", err, "The resume file could not be found.", "/applications/"+app.ID.Hex())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sign resume url failed", err, "Failed to generate download link.", "/applications/"+app.ID.Hex())
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link, http.StatusSeeOther)
}
