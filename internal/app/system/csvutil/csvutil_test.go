package csvutil

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/applytrack/internal/domain/models"
)

func TestPreScanApplicationsCSV_ValidRows(t *testing.T) {
	in := `job_title,company,status,company_type,applied_date
Backend Engineer,Acme,accepted,startup,2024-03-01
SRE,Initech,,,
Data Analyst,Globex,In Progress,faang,2024-02-10`

	rows, htmlErr, err := PreScanApplicationsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("PreScanApplicationsCSV() error = %v", err)
	}
	if htmlErr != "" {
		t.Fatalf("unexpected rejection: %s", htmlErr)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Status != models.StatusAccepted || rows[0].CompanyType != models.CompanyTypeStartup {
		t.Errorf("row 0 not canonicalised: %q / %q", rows[0].Status, rows[0].CompanyType)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !rows[0].AppliedDate.Equal(want) {
		t.Errorf("row 0 AppliedDate = %v, want %v", rows[0].AppliedDate, want)
	}
	if rows[1].Status != "" || !rows[1].AppliedDate.IsZero() {
		t.Errorf("row 1 should leave defaults to the store, got %+v", rows[1])
	}
	if rows[2].CompanyType != models.CompanyTypeFAANG {
		t.Errorf("row 2 CompanyType = %q", rows[2].CompanyType)
	}
}

func TestPreScanApplicationsCSV_NoHeaderAndBOM(t *testing.T) {
	in := "\ufeffjob_title,company\nEngineer,Acme\n\n,\n"
	rows, htmlErr, err := PreScanApplicationsCSV(strings.NewReader(in))
	if err != nil || htmlErr != "" {
		t.Fatalf("unexpected failure: %v %s", err, htmlErr)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	rows, _, _ = PreScanApplicationsCSV(strings.NewReader("Engineer,Acme\nTester,Hooli"))
	if len(rows) != 2 {
		t.Errorf("headerless: got %d rows, want 2", len(rows))
	}
}

func TestPreScanApplicationsCSV_RejectsBadRows(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason string
	}{
		{"missing company", "Engineer,", "missing company"},
		{"bad status", "Engineer,Acme,ghosted", "unknown status"},
		{"bad company type", "Engineer,Acme,,conglomerate", "unknown company type"},
		{"bad date", "Engineer,Acme,,,03/01/2024", "YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, htmlErr, err := PreScanApplicationsCSV(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if rows != nil {
				t.Errorf("rows should be nil on rejection, got %d", len(rows))
			}
			if !strings.Contains(string(htmlErr), tt.reason) {
				t.Errorf("htmlErr %q does not mention %q", htmlErr, tt.reason)
			}
		})
	}
}

func TestPreScanApplicationsCSV_EscapesErrors(t *testing.T) {
	_, htmlErr, _ := PreScanApplicationsCSV(strings.NewReader("<script>x</script>,"))
	if strings.Contains(string(htmlErr), "<script>") {
		t.Errorf("row content not escaped: %s", htmlErr)
	}
}

func TestWriteApplications(t *testing.T) {
	last := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	apps := []models.Application{{
		JobTitle:        "=HYPERLINK(\"x\")",
		Company:         "Acme, Inc.",
		Status:          models.StatusAccepted,
		CompanyType:     models.CompanyTypeStartup,
		AppliedDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LastDateToApply: &last,
	}}

	var buf bytes.Buffer
	if err := WriteApplications(&buf, apps); err != nil {
		t.Fatalf("WriteApplications() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("missing UTF-8 BOM")
	}
	if !strings.Contains(buf.String(), "\r\n") {
		t.Error("expected CRLF line endings")
	}

	recs, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	row := recs[1]
	if row[0] != "'=HYPERLINK(\"x\")" {
		t.Errorf("formula not defused: %q", row[0])
	}
	if row[1] != "Acme, Inc." || row[4] != "2024-03-01" || row[5] != "2024-04-01" {
		t.Errorf("unexpected row: %v", row)
	}
}
