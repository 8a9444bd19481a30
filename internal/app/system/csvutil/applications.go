// internal/app/system/csvutil/applications.go
package csvutil

import (
	"encoding/csv"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/applytrack/internal/domain/models"
)

// Header is the column order used for export and expected (optionally) on import.
var Header = []string{
	"job_title", "company", "status", "company_type", "applied_date",
	"last_date_to_apply", "application_link", "contact_email", "contact_phone",
	"tech_stack", "college_name", "job_description",
}

const dateLayout = "2006-01-02"

// WriteApplications writes apps as CSV with a header row. A UTF-8 BOM is
// written first so spreadsheet tools pick the right encoding.
func WriteApplications(w io.Writer, apps []models.Application) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, a := range apps {
		last := ""
		if a.LastDateToApply != nil {
			last = a.LastDateToApply.UTC().Format(dateLayout)
		}
		rec := []string{
			cellSafe(a.JobTitle), cellSafe(a.Company), a.Status, a.CompanyType,
			a.AppliedDate.UTC().Format(dateLayout), last,
			cellSafe(a.ApplicationLink), cellSafe(a.ContactEmail), cellSafe(a.ContactPhone),
			cellSafe(a.TechStack), cellSafe(a.CollegeName), cellSafe(a.JobDescription),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// cellSafe defuses values a spreadsheet would evaluate as a formula.
func cellSafe(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// PreScanApplicationsCSV reads every row from r, skips a header if present,
// validates each row and either returns the parsed records (without owner)
// OR a formatted HTML error describing the first few bad lines. It never
// writes to a DB, so it is safe to call before any insert.
//
// Columns follow Header; only job_title and company are required. Status
// and company type are matched loosely and default like the web form.
func PreScanApplicationsCSV(r io.Reader) (rows []models.Application, htmlErr template.HTML, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	type rowErr struct {
		Line   int
		Title  string
		Reason string
	}
	var errs []rowErr

	line := 0
	for {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return nil, template.HTML(template.HTMLEscapeString(e.Error())), nil
		}
		line++

		if line == 1 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if isHeader(rec[0]) {
				continue
			}
		}
		if blank(rec) {
			continue
		}
		if len(rows)+len(errs) >= MaxRows {
			return nil, template.HTML("Upload rejected: the file has more than " + strconv.Itoa(MaxRows) + " rows."), nil
		}

		a, reason := parseRow(rec)
		if reason != "" {
			errs = append(errs, rowErr{Line: line, Title: a.JobTitle, Reason: reason})
			continue
		}
		rows = append(rows, a)
	}

	if len(errs) > 0 {
		var b strings.Builder
		b.WriteString("Upload rejected: one or more rows are invalid.<br>")
		b.WriteString("Each row needs a job title and a company; dates use YYYY-MM-DD.<br>")

		max := 5
		if len(errs) < max {
			max = len(errs)
		}
		b.WriteString("Examples:<br>")
		for i := 0; i < max; i++ {
			e := errs[i]
			title := strings.TrimSpace(e.Title)
			if title == "" {
				title = "(missing)"
			}
			b.WriteString("• line ")
			b.WriteString(strconv.Itoa(e.Line))
			b.WriteString(" | ")
			b.WriteString(template.HTMLEscapeString(title))
			b.WriteString(" → ")
			b.WriteString(template.HTMLEscapeString(e.Reason))
			b.WriteString("<br>")
		}
		return nil, template.HTML(b.String()), nil
	}

	return rows, "", nil
}

func isHeader(first string) bool {
	f := strings.ToLower(strings.TrimSpace(first))
	return f == "job_title" || f == "job title"
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func col(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func parseRow(rec []string) (models.Application, string) {
	a := models.Application{
		JobTitle:        strings.TrimPrefix(col(rec, 0), "'"),
		Company:         strings.TrimPrefix(col(rec, 1), "'"),
		ApplicationLink: col(rec, 6),
		ContactEmail:    col(rec, 7),
		ContactPhone:    col(rec, 8),
		TechStack:       col(rec, 9),
		CollegeName:     col(rec, 10),
		JobDescription:  col(rec, 11),
	}
	if a.JobTitle == "" {
		return a, "missing job title"
	}
	if a.Company == "" {
		return a, "missing company"
	}

	if s := col(rec, 2); s != "" {
		canon, ok := models.CanonicalStatus(s)
		if !ok {
			return a, "unknown status " + strconv.Quote(s)
		}
		a.Status = canon
	}
	if ct := col(rec, 3); ct != "" {
		canon, ok := models.CanonicalCompanyType(ct)
		if !ok {
			return a, "unknown company type " + strconv.Quote(ct)
		}
		a.CompanyType = canon
	}

	if d := col(rec, 4); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return a, "applied date must be YYYY-MM-DD"
		}
		a.AppliedDate = t
	}
	if d := col(rec, 5); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return a, "last date to apply must be YYYY-MM-DD"
		}
		a.LastDateToApply = &t
	}
	return a, ""
}
