// internal/domain/models/applicationtypes.go
package models

import "strings"

// Canonical application status values.
//
// These strings are stored verbatim in Application.Status and are also the
// labels shown on the dashboard.
const (
	StatusInProgress = "In Progress"
	StatusAccepted   = "Accepted"
	StatusRejected   = "Rejected"
)

// ApplicationStatuses lists the allowed statuses in display order.
var ApplicationStatuses = []string{
	StatusInProgress,
	StatusAccepted,
	StatusRejected,
}

// DefaultApplicationStatus is used when no status is provided.
const DefaultApplicationStatus = StatusInProgress

// Canonical company type values.
const (
	CompanyTypeStartup         = "Startup"
	CompanyTypeSmallBusiness   = "Small Business"
	CompanyTypeMidSize         = "Mid-size Company"
	CompanyTypeLargeEnterprise = "Large Enterprise"
	CompanyTypeFAANG           = "FAANG"
	CompanyTypeOther           = "Other"
)

// CompanyTypes lists the allowed company types in form order.
var CompanyTypes = []string{
	CompanyTypeStartup,
	CompanyTypeSmallBusiness,
	CompanyTypeMidSize,
	CompanyTypeLargeEnterprise,
	CompanyTypeFAANG,
	CompanyTypeOther,
}

// DefaultCompanyType is used when no company type is provided.
const DefaultCompanyType = CompanyTypeOther

// UnknownCompanyType is the aggregation key for records with no company type.
// It is never stored.
const UnknownCompanyType = "Unknown"

// CanonicalStatus maps a loosely written status onto its canonical spelling.
// Matching ignores case, surrounding space and the separators "_", "-" and " ".
// The second result is false when the value is not a known status.
func CanonicalStatus(s string) (string, bool) {
	switch squash(s) {
	case "inprogress":
		return StatusInProgress, true
	case "accepted":
		return StatusAccepted, true
	case "rejected":
		return StatusRejected, true
	}
	return s, false
}

// IsValidStatus reports whether s is exactly one of ApplicationStatuses.
func IsValidStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CanonicalCompanyType maps a loosely written company type onto its canonical
// spelling using the same rules as CanonicalStatus.
func CanonicalCompanyType(s string) (string, bool) {
	key := squash(s)
	for _, v := range CompanyTypes {
		if squash(v) == key {
			return v, true
		}
	}
	if key == "midsize" {
		return CompanyTypeMidSize, true
	}
	return s, false
}

// IsValidCompanyType reports whether s is exactly one of CompanyTypes.
func IsValidCompanyType(s string) bool {
	for _, v := range CompanyTypes {
		if v == s {
			return true
		}
	}
	return false
}

func squash(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
