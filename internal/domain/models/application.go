// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application is one job application tracked by a user.
//
// Records are created once and never edited; every query is scoped by UserID.
type Application struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	JobTitle       string `bson:"job_title" json:"job_title"`
	Company        string `bson:"company" json:"company"`
	JobDescription string `bson:"job_description,omitempty" json:"job_description,omitempty"`
	TechStack      string `bson:"tech_stack,omitempty" json:"tech_stack,omitempty"`
	CollegeName    string `bson:"college_name,omitempty" json:"college_name,omitempty"`
	ContactEmail   string `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	ContactPhone   string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`

	Status      string `bson:"status" json:"status"`             // see ApplicationStatuses
	CompanyType string `bson:"company_type" json:"company_type"` // see CompanyTypes

	AppliedDate     time.Time  `bson:"applied_date" json:"applied_date"`
	LastDateToApply *time.Time `bson:"last_date_to_apply,omitempty" json:"last_date_to_apply,omitempty"`

	ApplicationLink string `bson:"application_link,omitempty" json:"application_link,omitempty"`
	ResumePath      string `bson:"resume_path,omitempty" json:"resume_path,omitempty"` // attachment store key
	ResumeName      string `bson:"resume_name,omitempty" json:"resume_name,omitempty"` // original filename

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// HasResume reports whether an attachment was uploaded with the application.
func (a Application) HasResume() bool {
	return a.ResumePath != ""
}
