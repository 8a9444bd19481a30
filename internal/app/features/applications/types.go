// internal/app/features/applications/types.go
package applications

import (
	"html/template"

	"github.com/dalemusser/applytrack/internal/app/system/formutil"
	"github.com/dalemusser/applytrack/internal/app/system/paging"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/applytrack/internal/domain/models"
)

// dateLayout is the format of <input type="date"> values.
const dateLayout = "2006-01-02"

type listData struct {
	viewdata.BaseVM

	Items    []models.Application
	Statuses []formutil.Option
	Status   string // canonical status filter, "" for all
	Skipped  int

	// ReturnURL brings the detail page's Back link here.
	ReturnURL string

	Range   paging.Range
	HasPrev bool
	HasNext bool
}

// applicationFormVM echoes the submitted values back on a failed create.
type applicationFormVM struct {
	formutil.Base

	JobTitle        string
	Company         string
	JobDescription  string
	TechStack       string
	CollegeName     string
	ContactEmail    string
	ContactPhone    string
	ApplicationLink string
	AppliedDate     string
	LastDateToApply string

	Statuses     []formutil.Option
	CompanyTypes []formutil.Option
	Accept       string
	MaxUploadMB  int
}

// createInput carries the form rules checked before anything is stored.
type createInput struct {
	JobTitle        string `validate:"required,max=200" label:"Job title"`
	Company         string `validate:"required,max=200" label:"Company"`
	JobDescription  string `validate:"max=10000" label:"Job description"`
	TechStack       string `validate:"max=1000" label:"Tech stack"`
	CollegeName     string `validate:"max=200" label:"College name"`
	ContactEmail    string `validate:"omitempty,email,max=254" label:"Contact email"`
	ContactPhone    string `validate:"max=50" label:"Contact phone"`
	ApplicationLink string `validate:"omitempty,httpurl,max=2000" label:"Application link"`
	Status          string `validate:"required,appstatus" label:"Status"`
	CompanyType     string `validate:"required,companytype" label:"Company type"`
}

type viewData struct {
	viewdata.BaseVM
	App models.Application
}

type importData struct {
	viewdata.BaseVM
	Error    template.HTML
	Imported int
	Columns  []string
}
