// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"go.uber.org/zap"
)

// afterLogout is where a signed-out browser lands; the login page shows a
// confirmation for it.
const afterLogout = "/login?signed_out=1"

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, SessionMgr: sessionMgr}
}

// ServeLogout handles GET /logout. Open event streams of this browser end on
// their own once the next request arrives without a session.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	var fields []zap.Field
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", append(fields, zap.Error(err))...)
	} else {
		h.Log.Info("user signed out", fields...)
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", afterLogout)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, afterLogout, http.StatusSeeOther)
}
