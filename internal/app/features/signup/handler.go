// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/applytrack/internal/app/features/errors"
	userstore "github.com/dalemusser/applytrack/internal/app/store/users"
	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/dalemusser/applytrack/internal/app/system/authutil"
	"github.com/dalemusser/applytrack/internal/app/system/inputval"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

type signupInput struct {
	FullName string `validate:"required,max=200" label:"Name"`
	Email    string `validate:"required,email,max=254" label:"Email"`
	Password string `validate:"required" label:"Password"`
	Confirm  string `validate:"eqfield=Password" label:"Password confirmation"`
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	FullName      string
	Email         string
	PasswordRules string
}

// ServeSignup renders the account creation form.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, signupInput{}, "")
}

// HandleSignupPost creates the account and signs the new user in.
func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	in := signupInput{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
	}

	if res := inputval.Validate(in); res.HasErrors() {
		h.render(w, r, in, res.First())
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		h.render(w, r, in, capitalize(err.Error())+".")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{FullName: in.FullName, Email: in.Email}, in.Password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.render(w, r, in, "An account with that email already exists. Try signing in.")
		return
	}
	if err != nil {
		h.Log.Error("create account failed", zap.Error(err))
		h.render(w, r, in, "Unable to create your account. Please try again.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, in signupInput, msg string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Create account", "/"),
		Error:         msg,
		FullName:      in.FullName,
		Email:         in.Email,
		PasswordRules: authutil.PasswordRules(),
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
