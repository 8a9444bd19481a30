// internal/app/features/applications/export.go
package applications

import (
	"context"
	"fmt"
	"net/http"
	"time"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/csvutil"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeExportCSV downloads every readable application of the signed-in user.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Apps.ListByOwner(ctx, uid, applicationstore.ListOptions{})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export fetch failed", err, "A database error occurred.", "/applications")
		return
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Cache-Control", "no-store")

	if err := csvutil.WriteApplications(w, res.Items); err != nil {
		// Headers are already out; all we can do is log.
		h.Log.Warn("csv export write failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}
}
