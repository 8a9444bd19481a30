// Package appstats aggregates a user's application records into the counts,
// per-company-type success rates and filtered lists shown on the dashboard
// and analytics pages.
//
// Every function here is pure: no I/O, no shared state, and no panics on any
// input including nil. Callers fetch records first and aggregate the result.
package appstats

import (
	"math"
	"sort"

	"github.com/dalemusser/applytrack/internal/domain/models"
)

// StatusCounts holds the four dashboard numbers.
//
// Total always equals the number of records given, so a record whose status
// is not one of the canonical values is counted in Total only.
type StatusCounts struct {
	Total      int `json:"total"`
	InProgress int `json:"inProgress"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
}

// CountByStatus tallies records per canonical status.
func CountByStatus(records []models.Application) StatusCounts {
	c := StatusCounts{Total: len(records)}
	for _, a := range records {
		switch a.Status {
		case models.StatusInProgress:
			c.InProgress++
		case models.StatusAccepted:
			c.Accepted++
		case models.StatusRejected:
			c.Rejected++
		}
	}
	return c
}

// CompanyTypeGroup summarises the records that share one company type.
type CompanyTypeGroup struct {
	CompanyType string  `json:"companyType"`
	Total       int     `json:"totalApplications"`
	Accepted    int     `json:"acceptedApplications"`
	Rejected    int     `json:"rejectedApplications"`
	InProgress  int     `json:"inProgressApplications"`
	SuccessRate float64 `json:"successRate"` // percent, one decimal
}

// GroupByCompanyType partitions records by company type and computes each
// group's success rate (accepted / total * 100, one decimal).
//
// A missing company type is grouped under models.UnknownCompanyType. Groups
// come back in the order their key first appears in records. The group totals
// always add up to len(records).
func GroupByCompanyType(records []models.Application) []CompanyTypeGroup {
	if len(records) == 0 {
		return []CompanyTypeGroup{}
	}

	index := make(map[string]int)
	groups := make([]CompanyTypeGroup, 0, len(models.CompanyTypes))

	for _, a := range records {
		key := a.CompanyType
		if key == "" {
			key = models.UnknownCompanyType
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CompanyTypeGroup{CompanyType: key})
		}

		g := &groups[i]
		g.Total++
		switch a.Status {
		case models.StatusAccepted:
			g.Accepted++
		case models.StatusRejected:
			g.Rejected++
		case models.StatusInProgress:
			g.InProgress++
		}
	}

	for i := range groups {
		groups[i].SuccessRate = Rate(groups[i].Accepted, groups[i].Total)
	}
	return groups
}

// SortGroups returns a copy of groups ordered by total descending, then by
// company type name. The input slice is left untouched.
func SortGroups(groups []CompanyTypeGroup) []CompanyTypeGroup {
	out := make([]CompanyTypeGroup, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CompanyType < out[j].CompanyType
	})
	return out
}

// Rate returns part/total as a percentage rounded to one decimal place.
// A zero total yields 0.
func Rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// StatusBucket is one bar of the status distribution chart.
type StatusBucket struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StatusDistribution counts records per status value actually present.
//
// Canonical statuses come first in their display order; any other status
// strings follow alphabetically. Statuses with no records are omitted.
func StatusDistribution(records []models.Application) []StatusBucket {
	counts := make(map[string]int)
	for _, a := range records {
		counts[a.Status]++
	}

	out := make([]StatusBucket, 0, len(counts))
	for _, s := range models.ApplicationStatuses {
		if n := counts[s]; n > 0 {
			out = append(out, StatusBucket{Status: s, Count: n})
			delete(counts, s)
		}
	}

	extra := make([]string, 0, len(counts))
	for s := range counts {
		extra = append(extra, s)
	}
	sort.Strings(extra)
	for _, s := range extra {
		out = append(out, StatusBucket{Status: s, Count: counts[s]})
	}
	return out
}

// Summary bundles the aggregates the views need in one pass.
type Summary struct {
	Counts      StatusCounts       `json:"counts"`
	Groups      []CompanyTypeGroup `json:"groups"`
	SuccessRate float64            `json:"successRate"`
}

// Summarize computes counts, company-type groups and the overall success rate.
func Summarize(records []models.Application) Summary {
	counts := CountByStatus(records)
	return Summary{
		Counts:      counts,
		Groups:      GroupByCompanyType(records),
		SuccessRate: Rate(counts.Accepted, counts.Total),
	}
}

// MonthBucket counts the records applied for in one calendar month.
type MonthBucket struct {
	Month string `json:"month"` // "2006-01"
	Count int    `json:"count"`
}

// ByMonth counts records per applied month (UTC), oldest month first.
// Records with a zero applied date are ignored.
func ByMonth(records []models.Application) []MonthBucket {
	counts := make(map[string]int)
	for _, a := range records {
		if a.AppliedDate.IsZero() {
			continue
		}
		counts[a.AppliedDate.UTC().Format("2006-01")]++
	}

	out := make([]MonthBucket, 0, len(counts))
	for m, n := range counts {
		out = append(out, MonthBucket{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
