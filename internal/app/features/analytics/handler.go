// internal/app/features/analytics/handler.go
package analytics

import (
	"context"
	"encoding/json"
	"net/http"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/appstats"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const fetchWarning = "We couldn't load your applications right now. Charts may be empty or out of date."

type Handler struct {
	Apps *applicationstore.Store
	Log  *zap.Logger
}

func NewHandler(apps *applicationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Apps: apps, Log: logger}
}

// report is everything the analytics page and its JSON endpoint show.
type report struct {
	Counts       appstats.StatusCounts       `json:"counts"`
	SuccessRate  float64                     `json:"successRate"`
	Distribution []appstats.StatusBucket     `json:"statusDistribution"`
	CompanyTypes []appstats.CompanyTypeGroup `json:"companyTypes"`
	ByMonth      []appstats.MonthBucket      `json:"byMonth"`
	Skipped      int                         `json:"skipped"`
	Warning      string                      `json:"warning,omitempty"`

	timeline []models.Application
}

type pageData struct {
	viewdata.BaseVM
	Report   report
	Timeline []models.Application
}

// ServeAnalytics renders the charts page.
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r, "analytics")
	if !ok {
		return
	}
	templates.Render(w, r, "analytics", pageData{
		BaseVM:   viewdata.NewBaseVM(r, "Analytics", "/dashboard"),
		Report:   rep,
		Timeline: rep.timeline,
	})
}

// ServeData returns the same aggregates as JSON for the charts.
func (h *Handler) ServeData(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r, "analytics_data")
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		h.Log.Warn("encode analytics json failed", zap.Error(err))
	}
}

// build fetches the user's records and runs every aggregate over the same
// list. A fetch failure degrades to empty aggregates plus a warning.
func (h *Handler) build(w http.ResponseWriter, r *http.Request, view string) (report, bool) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return report{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var rep report
	res, err := h.Apps.ListByOwner(ctx, uid, applicationstore.ListOptions{})
	if err != nil {
		h.Log.Error("analytics fetch failed", zap.Error(err), zap.String("user_id", uid.Hex()))
		rep.Warning = fetchWarning
		res = applicationstore.ListResult{}
	}
	if res.Skipped > 0 {
		metrics.ApplicationsSkipped.Add(float64(res.Skipped))
	}

	sum := appstats.Summarize(res.Items)
	rep.Counts = sum.Counts
	rep.SuccessRate = sum.SuccessRate
	rep.CompanyTypes = appstats.SortGroups(sum.Groups)
	rep.Distribution = appstats.StatusDistribution(res.Items)
	rep.ByMonth = appstats.ByMonth(res.Items)
	rep.Skipped = res.Skipped
	rep.timeline = res.Items

	metrics.StatsComputed.WithLabelValues(view).Inc()
	return rep, true
}
