// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix. Empty allows any safe URL.
	AllowedPrefix string

	// ExcludedSubpaths reject action pages ("/new", "/import") so Back never
	// lands on a form that was just submitted.
	ExcludedSubpaths []string

	// Fallback is used when no acceptable return URL is found.
	Fallback string

	// PreserveQueryParam is copied from the request onto Fallback when set.
	PreserveQueryParam string
}

// ApplicationsBackURL returns from an application's page to the list the
// user came from, keeping its status filter.
var ApplicationsBackURL = BackURLOptions{
	AllowedPrefix:      "/applications",
	ExcludedSubpaths:   []string{"/new", "/import", "/resume", "/export.csv"},
	Fallback:           "/applications",
	PreserveQueryParam: "status",
}

// SafeBackURL picks the "return" query or form value when it is a local URL
// inside opts.AllowedPrefix and not an excluded action page; otherwise it
// builds opts.Fallback.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret != "" && acceptable(ret, opts) {
		return ret
	}

	fallback := opts.Fallback
	if opts.PreserveQueryParam == "" {
		return fallback
	}
	v := query.Get(r, opts.PreserveQueryParam)
	if v == "" {
		v = strings.TrimSpace(r.FormValue(opts.PreserveQueryParam))
	}
	if v == "" || v == "all" {
		return fallback
	}
	sep := "?"
	if strings.Contains(fallback, "?") {
		sep = "&"
	}
	return fallback + sep + opts.PreserveQueryParam + "=" + url.QueryEscape(v)
}

func acceptable(ret string, opts BackURLOptions) bool {
	if opts.AllowedPrefix != "" {
		path := ret
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if path != opts.AllowedPrefix && !strings.HasPrefix(path, opts.AllowedPrefix+"/") {
			return false
		}
	}
	for _, ex := range opts.ExcludedSubpaths {
		if strings.Contains(ret, ex) {
			return false
		}
	}
	return true
}
