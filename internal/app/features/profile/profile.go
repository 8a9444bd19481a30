// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/applytrack/internal/app/features/errors"
	userstore "github.com/dalemusser/applytrack/internal/app/store/users"
	"github.com/dalemusser/applytrack/internal/app/system/authutil"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/normalize"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// profileData is the view model for the settings page.
type profileData struct {
	viewdata.BaseVM

	FullName      string
	Email         string
	MemberSince   string
	PasswordRules string

	// Form state
	Error   template.HTML
	Success template.HTML
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Failed to load your settings.", "/dashboard")
		return nil, false
	}
	return user, true
}

// ServeProfile renders the account settings page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	var success template.HTML
	switch r.URL.Query().Get("success") {
	case "password":
		success = "Password changed successfully."
	case "name":
		success = "Name updated."
	}

	h.render(w, r, user, "", success)
}

// HandleUpdateName processes the display-name form.
func (h *Handler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	name := normalize.Name(r.FormValue("full_name"))
	if name == "" {
		h.render(w, r, user, "Name is required.", "")
		return
	}
	if len(name) > 200 {
		h.render(w, r, user, "Name must be at most 200 characters.", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateName(ctx, user.ID, name); err != nil {
		h.ErrLog.LogServerError(w, r, "update name failed", err, "Failed to update your name.", "/settings")
		return
	}

	http.Redirect(w, r, "/settings?success=name", http.StatusSeeOther)
}

// HandleChangePassword processes the password change form.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if !authutil.CheckPassword(currentPassword, user.PasswordHash) {
		h.render(w, r, user, "Current password is incorrect.", "")
		return
	}
	if err := authutil.ValidatePassword(newPassword); err != nil {
		h.render(w, r, user, template.HTML(template.HTMLEscapeString(capitalize(err.Error()))+"."), "")
		return
	}
	if newPassword != confirmPassword {
		h.render(w, r, user, "New passwords do not match.", "")
		return
	}
	if authutil.CheckPassword(newPassword, user.PasswordHash) {
		h.render(w, r, user, "New password cannot be the same as your current password.", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, user.ID, currentPassword, newPassword); err != nil {
		if errors.Is(err, userstore.ErrWrongPassword) {
			h.render(w, r, user, "Current password is incorrect.", "")
			return
		}
		h.ErrLog.LogServerError(w, r, "update password failed", err, "Failed to update password.", "/settings")
		return
	}

	h.Log.Info("password changed", zap.String("user_id", user.ID.Hex()))
	http.Redirect(w, r, "/settings?success=password", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, user *models.User, errMsg, success template.HTML) {
	templates.Render(w, r, "profile", profileData{
		BaseVM:        viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		FullName:      user.FullName,
		Email:         user.Email,
		MemberSince:   user.CreatedAt.Format("January 2006"),
		PasswordRules: authutil.PasswordRules(),
		Error:         errMsg,
		Success:       success,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
