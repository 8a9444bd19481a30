// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern, method and status code",
}, []string{"route", "method", "code"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "applytrack",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route pattern",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

var ApplicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "applications",
	Name:      "created_total",
	Help:      "Applications created",
})

var ApplicationsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "applications",
	Name:      "skipped_total",
	Help:      "Stored application documents skipped as unreadable during a fetch",
})

var StatsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "stats",
	Name:      "computed_total",
	Help:      "Statistics recomputations by view",
}, []string{"view"})

var ResumeUploads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "attachments",
	Name:      "uploads_total",
	Help:      "Resume uploads by outcome",
}, []string{"outcome"})

var ChangeEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "changefeed",
	Name:      "published_total",
	Help:      "Change events published by outcome",
}, []string{"outcome"})

var EventStreams = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "applytrack",
	Subsystem: "changefeed",
	Name:      "open_streams",
	Help:      "Open server-sent event streams",
})

var ApplicationsStored = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "applytrack",
	Subsystem: "applications",
	Name:      "stored",
	Help:      "Stored applications by status, refreshed periodically",
}, []string{"status"})

var LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "applytrack",
	Subsystem: "auth",
	Name:      "login_attempts_total",
	Help:      "Login attempts by outcome",
}, []string{"outcome"})

// Outcome labels shared by the counters above.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
	OutcomeLimited  = "rate_limited"
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per chi route pattern.
// Unmatched requests are labelled "unmatched" so random paths cannot grow
// the label set.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
