// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with:
// - The user's previously entered values (echoed back)
// - An error message explaining what went wrong
// - The choices needed for selects (statuses, company types)
//
// Example usage:
//
//	type newApplicationData struct {
//		formutil.Base
//		JobTitle string
//		Company  string
//	}
//
//	data := newApplicationData{JobTitle: title, Company: company}
//	formutil.SetBase(&data.Base, r, "Add Application", "/applications")
//	data.SetError("Company is required.")
//	templates.Render(w, r, "application_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error   template.HTML
	Success string
}

// SetBase populates the common Base fields from the request context.
//
// Parameters:
//   - b: pointer to the Base struct to populate
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the error message on a Base struct. msg is escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// Option is one <option> of a select, with Selected precomputed.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Options builds select options from values, selecting current.
func Options(values []string, current string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v, Selected: v == current})
	}
	return out
}
