package applicationstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/applytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMalformed marks a stored document that cannot be turned into a
// models.Application. Such documents are skipped by ListByOwner.
var ErrMalformed = errors.New("malformed application document")

// rawApplication mirrors models.Application but leaves the date fields
// undecoded so both BSON dates and "2006-01-02" strings can be accepted.
type rawApplication struct {
	ID     primitive.ObjectID `bson:"_id"`
	UserID primitive.ObjectID `bson:"user_id"`

	JobTitle       string `bson:"job_title"`
	Company        string `bson:"company"`
	JobDescription string `bson:"job_description"`
	TechStack      string `bson:"tech_stack"`
	CollegeName    string `bson:"college_name"`
	ContactEmail   string `bson:"contact_email"`
	ContactPhone   string `bson:"contact_phone"`

	Status      string `bson:"status"`
	CompanyType string `bson:"company_type"`

	AppliedDate     bson.RawValue `bson:"applied_date"`
	LastDateToApply bson.RawValue `bson:"last_date_to_apply"`

	ApplicationLink string `bson:"application_link"`
	ResumePath      string `bson:"resume_path"`
	ResumeName      string `bson:"resume_name"`

	CreatedAt time.Time `bson:"created_at"`
}

// Coerce decodes one stored document and canonicalises it.
//
// Rules:
//   - job title, company and applied date must be present
//   - status is matched case-insensitively; empty becomes In Progress and any
//     other unknown value rejects the document
//   - company type is matched case-insensitively; empty stays empty (it is
//     reported as Unknown by the aggregator) and unknown values become Other
//   - an unreadable last-date-to-apply is dropped rather than rejected
func Coerce(doc bson.Raw) (models.Application, error) {
	var raw rawApplication
	if err := bson.Unmarshal(doc, &raw); err != nil {
		return models.Application{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	a := models.Application{
		ID:              raw.ID,
		UserID:          raw.UserID,
		JobTitle:        strings.TrimSpace(raw.JobTitle),
		Company:         strings.TrimSpace(raw.Company),
		JobDescription:  raw.JobDescription,
		TechStack:       strings.TrimSpace(raw.TechStack),
		CollegeName:     strings.TrimSpace(raw.CollegeName),
		ContactEmail:    strings.TrimSpace(raw.ContactEmail),
		ContactPhone:    strings.TrimSpace(raw.ContactPhone),
		ApplicationLink: strings.TrimSpace(raw.ApplicationLink),
		ResumePath:      raw.ResumePath,
		ResumeName:      raw.ResumeName,
		CreatedAt:       raw.CreatedAt,
	}

	if a.JobTitle == "" {
		return models.Application{}, fmt.Errorf("%w: missing job_title", ErrMalformed)
	}
	if a.Company == "" {
		return models.Application{}, fmt.Errorf("%w: missing company", ErrMalformed)
	}

	switch s := strings.TrimSpace(raw.Status); s {
	case "":
		a.Status = models.DefaultApplicationStatus
	default:
		canon, ok := models.CanonicalStatus(s)
		if !ok {
			return models.Application{}, fmt.Errorf("%w: unknown status %q", ErrMalformed, s)
		}
		a.Status = canon
	}

	if ct := strings.TrimSpace(raw.CompanyType); ct != "" {
		if canon, ok := models.CanonicalCompanyType(ct); ok {
			a.CompanyType = canon
		} else {
			a.CompanyType = models.CompanyTypeOther
		}
	}

	applied, ok := dateValue(raw.AppliedDate)
	if !ok {
		return models.Application{}, fmt.Errorf("%w: missing or unreadable applied_date", ErrMalformed)
	}
	a.AppliedDate = applied

	if last, ok := dateValue(raw.LastDateToApply); ok {
		a.LastDateToApply = &last
	}

	return a, nil
}

// dateLayouts are the string forms accepted for date fields.
var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func dateValue(v bson.RawValue) (time.Time, bool) {
	switch v.Type {
	case bsontype.DateTime:
		if t, ok := v.TimeOK(); ok {
			return t.UTC(), true
		}
	case bsontype.String:
		s := strings.TrimSpace(v.StringValue())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
