package appstats

import (
	"strings"

	"github.com/dalemusser/applytrack/internal/domain/models"
)

// Filter selects records by status. The zero value selects everything.
type Filter struct {
	Status string // canonical status, or "" for all
}

// All reports whether the filter passes every record.
func (f Filter) All() bool { return f.Status == "" }

// Key returns the dashboard query-string key for the filter.
func (f Filter) Key() string {
	switch f.Status {
	case models.StatusInProgress:
		return "inProgress"
	case models.StatusAccepted:
		return "accepted"
	case models.StatusRejected:
		return "rejected"
	}
	return "total"
}

// ParseFilter maps a dashboard filter key onto a Filter.
//
// "", "all" and "total" select everything. Status names are accepted in their
// display form ("In Progress") or as keys ("inProgress", "in_progress"),
// case-insensitively. An unrecognised key yields the all-records filter and
// false.
func ParseFilter(raw string) (Filter, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "total":
		return Filter{}, true
	}
	if s, ok := models.CanonicalStatus(raw); ok {
		return Filter{Status: s}, true
	}
	return Filter{}, false
}

// FilterByStatus returns the records whose status equals key, in input order.
//
// A key of "", "all" or "total" returns every record. Any other key is
// compared verbatim against Application.Status, so a key that matches no
// record yields an empty slice.
func FilterByStatus(records []models.Application, key string) []models.Application {
	switch key {
	case "", "all", "total":
		out := make([]models.Application, len(records))
		copy(out, records)
		return out
	}

	out := make([]models.Application, 0, len(records))
	for _, a := range records {
		if a.Status == key {
			out = append(out, a)
		}
	}
	return out
}

// Apply runs FilterByStatus with the filter's status.
func (f Filter) Apply(records []models.Application) []models.Application {
	return FilterByStatus(records, f.Status)
}
