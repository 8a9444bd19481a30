// internal/app/features/applications/list.go
package applications

import (
	"context"
	"net/http"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/appstats"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/formutil"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/applytrack/internal/app/system/paging"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList shows the signed-in user's applications, newest applied first,
// one page at a time. ?status= narrows the list; ?start= selects the page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	filter, _ := appstats.ParseFilter(query.Get(r, "status"))
	start := paging.ParseStart(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Apps.ListByOwner(ctx, uid, applicationstore.ListOptions{
		Status: filter.Status,
		Skip:   paging.Skip(start),
		Limit:  paging.LimitPlusOne(),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list applications failed", err, "A database error occurred.", "/dashboard")
		return
	}
	if res.Skipped > 0 {
		metrics.ApplicationsSkipped.Add(float64(res.Skipped))
	}

	items := res.Items
	pg := paging.TrimPage(&items, start)

	templates.Render(w, r, "applications_list", listData{
		BaseVM:    viewdata.NewBaseVM(r, "Applications", "/dashboard"),
		Items:     items,
		Statuses:  formutil.Options(models.ApplicationStatuses, filter.Status),
		Status:    filter.Status,
		Skipped:   res.Skipped,
		ReturnURL: r.URL.RequestURI(),
		Range:     paging.ComputeRange(start, len(items)),
		HasPrev:   pg.HasPrev,
		HasNext:   pg.HasNext,
	})
}
