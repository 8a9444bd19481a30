// internal/app/features/applications/import.go
package applications

import (
	"errors"
	"html/template"
	"net/http"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/csvutil"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeImport renders the CSV upload form.
func (h *Handler) ServeImport(w http.ResponseWriter, r *http.Request) {
	h.renderImport(w, r, "", 0)
}

// HandleImport validates the whole file first and inserts only when every
// row is good, so a rejected upload leaves nothing behind.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.renderImport(w, r, "The file is too large. CSV uploads must be 2 MB or smaller.", 0)
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/applications/import")
		return
	}

	file, header, err := r.FormFile("csv")
	if err != nil || header == nil || header.Size == 0 {
		h.renderImport(w, r, "Choose a CSV file to upload.", 0)
		return
	}
	defer file.Close()

	rows, htmlErr, err := csvutil.PreScanApplicationsCSV(file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "read csv failed", err, "Failed to read the uploaded file.", "/applications/import")
		return
	}
	if htmlErr != "" {
		h.renderImportHTML(w, r, htmlErr, 0)
		return
	}
	if len(rows) == 0 {
		h.renderImport(w, r, "The file contains no applications.", 0)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "csv import")
	defer cancel()

	created, err := h.Apps.CreateMany(ctx, uid, rows)
	if err != nil {
		if errors.Is(err, applicationstore.ErrInvalid) {
			h.renderImport(w, r, "Upload rejected: "+err.Error(), 0)
			return
		}
		h.ErrLog.LogServerError(w, r, "import insert failed", err, "A database error occurred.", "/applications/import")
		return
	}

	metrics.ApplicationsCreated.Add(float64(len(created)))
	h.Log.Info("applications imported",
		zap.String("user_id", uid.Hex()),
		zap.Int("count", len(created)))
	h.publish(ctx, uid.Hex())

	h.renderImport(w, r, "", len(created))
}

func (h *Handler) renderImport(w http.ResponseWriter, r *http.Request, msg string, imported int) {
	h.renderImportHTML(w, r, template.HTML(template.HTMLEscapeString(msg)), imported)
}

func (h *Handler) renderImportHTML(w http.ResponseWriter, r *http.Request, msg template.HTML, imported int) {
	templates.Render(w, r, "application_import", importData{
		BaseVM:   viewdata.NewBaseVM(r, "Import Applications", "/applications"),
		Error:    msg,
		Imported: imported,
		Columns:  csvutil.Header,
	})
}
