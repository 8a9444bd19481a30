// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/appstats"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// fetchWarning is shown instead of failing the page when records cannot be read.
const fetchWarning = "We couldn't load your applications right now. The numbers below may be out of date."

// ServeDashboard renders the full dashboard page.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildStats(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "dashboard", dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
		Stats:  data,
	})
}

// ServeStats renders only the cards and lists, for HTMX refreshes.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildStats(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "dashboard_stats", data)
}

// buildStats fetches the caller's records once and derives everything the
// dashboard shows from that single list. A fetch failure yields the empty
// aggregate plus a warning rather than an error page.
func (h *Handler) buildStats(w http.ResponseWriter, r *http.Request) (statsData, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return statsData{}, false
	}

	filter, known := appstats.ParseFilter(query.Get(r, "filter"))
	if !known {
		h.Log.Debug("unknown dashboard filter", zap.String("filter", query.Get(r, "filter")))
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	data := statsData{Filter: filter.Key()}

	res, err := h.Apps.ListByOwner(ctx, uid, applicationstore.ListOptions{})
	if err != nil {
		h.Log.Error("dashboard fetch failed", zap.Error(err), zap.String("user_id", uid.Hex()))
		data.Warning = fetchWarning
		res = applicationstore.ListResult{}
	}
	if res.Skipped > 0 {
		metrics.ApplicationsSkipped.Add(float64(res.Skipped))
		data.Skipped = res.Skipped
	}

	data.Cards = buildCards(appstats.CountByStatus(res.Items), data.Filter)
	data.Filtered = filter.Apply(res.Items)
	data.Recent = res.Items
	if len(data.Recent) > recentCount {
		data.Recent = data.Recent[:recentCount]
	}
	metrics.StatsComputed.WithLabelValues("dashboard").Inc()

	return data, true
}
