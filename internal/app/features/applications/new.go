// internal/app/features/applications/new.go
package applications

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/attachments"
	"github.com/dalemusser/applytrack/internal/app/system/authz"
	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"github.com/dalemusser/applytrack/internal/app/system/formutil"
	"github.com/dalemusser/applytrack/internal/app/system/inputval"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"github.com/dalemusser/applytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// maxFormSize leaves room for the text fields next to a full-size resume.
const maxFormSize = attachments.MaxUploadSize + 1<<20

// ServeNew renders the empty create form with today's date filled in.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	vm := applicationFormVM{
		AppliedDate: time.Now().UTC().Format(dateLayout),
	}
	h.renderNewForm(w, r, vm, models.DefaultApplicationStatus, models.DefaultCompanyType, "")
}

// HandleCreate stores a new application and its optional resume, then tells
// the user's open pages to refresh.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			metrics.ResumeUploads.WithLabelValues(metrics.OutcomeRejected).Inc()
			h.renderNewForm(w, r, applicationFormVM{}, models.DefaultApplicationStatus, models.DefaultCompanyType,
				"The upload is too large. Resumes must be 5 MB or smaller.")
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/applications")
		return
	}

	in := createInput{
		JobTitle:        strings.TrimSpace(r.FormValue("job_title")),
		Company:         strings.TrimSpace(r.FormValue("company")),
		JobDescription:  strings.TrimSpace(r.FormValue("job_description")),
		TechStack:       strings.TrimSpace(r.FormValue("tech_stack")),
		CollegeName:     strings.TrimSpace(r.FormValue("college_name")),
		ContactEmail:    strings.TrimSpace(r.FormValue("contact_email")),
		ContactPhone:    strings.TrimSpace(r.FormValue("contact_phone")),
		ApplicationLink: strings.TrimSpace(r.FormValue("application_link")),
		Status:          strings.TrimSpace(r.FormValue("status")),
		CompanyType:     strings.TrimSpace(r.FormValue("company_type")),
	}
	if in.Status == "" {
		in.Status = models.DefaultApplicationStatus
	}
	if in.CompanyType == "" {
		in.CompanyType = models.DefaultCompanyType
	}
	appliedRaw := strings.TrimSpace(r.FormValue("applied_date"))
	lastRaw := strings.TrimSpace(r.FormValue("last_date_to_apply"))

	vm := applicationFormVM{
		JobTitle:        in.JobTitle,
		Company:         in.Company,
		JobDescription:  in.JobDescription,
		TechStack:       in.TechStack,
		CollegeName:     in.CollegeName,
		ContactEmail:    in.ContactEmail,
		ContactPhone:    in.ContactPhone,
		ApplicationLink: in.ApplicationLink,
		AppliedDate:     appliedRaw,
		LastDateToApply: lastRaw,
	}
	reRender := func(msg string) {
		h.renderNewForm(w, r, vm, in.Status, in.CompanyType, msg)
	}

	if res := inputval.Validate(in); res.HasErrors() {
		reRender(res.First())
		return
	}

	app := models.Application{
		UserID:          uid,
		JobTitle:        in.JobTitle,
		Company:         in.Company,
		JobDescription:  in.JobDescription,
		TechStack:       in.TechStack,
		CollegeName:     in.CollegeName,
		ContactEmail:    in.ContactEmail,
		ContactPhone:    in.ContactPhone,
		ApplicationLink: in.ApplicationLink,
		Status:          in.Status,
		CompanyType:     in.CompanyType,
	}
	if appliedRaw != "" {
		d, err := time.Parse(dateLayout, appliedRaw)
		if err != nil {
			reRender("Applied date must be a valid date.")
			return
		}
		app.AppliedDate = d
	}
	if lastRaw != "" {
		d, err := time.Parse(dateLayout, lastRaw)
		if err != nil {
			reRender("Last date to apply must be a valid date.")
			return
		}
		app.LastDateToApply = &d
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// Resume is optional.
	file, header, fileErr := r.FormFile("resume")
	if fileErr == nil && header != nil && header.Size > 0 {
		defer file.Close()
		key, msg := h.storeResume(ctx, uid.Hex(), file, header)
		if msg != "" {
			reRender(msg)
			return
		}
		app.ResumePath = key
		app.ResumeName = attachments.SanitizeFilename(header.Filename)
	}

	created, err := h.Apps.Create(ctx, app)
	if err != nil {
		if app.ResumePath != "" {
			if delErr := h.Files.Delete(ctx, app.ResumePath); delErr != nil {
				h.Log.Warn("failed to clean up resume after create error",
					zap.String("key", app.ResumePath),
					zap.Error(delErr))
			}
		}
		if errors.Is(err, applicationstore.ErrInvalid) {
			reRender(friendly(err))
			return
		}
		h.Log.Error("create application failed", zap.Error(err), zap.String("user_id", uid.Hex()))
		reRender("Database error while saving the application.")
		return
	}

	metrics.ApplicationsCreated.Inc()
	h.Log.Info("application created",
		zap.String("user_id", uid.Hex()),
		zap.String("application_id", created.ID.Hex()))
	h.publish(ctx, uid.Hex())

	http.Redirect(w, r, "/applications", http.StatusSeeOther)
}

// storeResume validates and uploads one resume. A non-empty message means the
// upload was refused and should be shown to the user.
func (h *Handler) storeResume(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (string, string) {
	contentType, err := attachments.CheckUpload(header.Filename, header.Size)
	switch {
	case errors.Is(err, attachments.ErrTooLarge):
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeRejected).Inc()
		return "", "Resumes must be 5 MB or smaller."
	case errors.Is(err, attachments.ErrUnsupportedType):
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeRejected).Inc()
		return "", "Resumes must be PDF, Word or plain-text files."
	}

	key := attachments.ResumeKey(userID, header.Filename)
	if err := h.Files.Put(ctx, key, file, header.Size, contentType); err != nil {
		if errors.Is(err, attachments.ErrTooLarge) {
			metrics.ResumeUploads.WithLabelValues(metrics.OutcomeRejected).Inc()
			return "", "Resumes must be 5 MB or smaller."
		}
		metrics.ResumeUploads.WithLabelValues(metrics.OutcomeFailed).Inc()
		h.Log.Error("resume upload failed", zap.Error(err), zap.String("key", key))
		return "", "Failed to upload resume. Please try again."
	}
	metrics.ResumeUploads.WithLabelValues(metrics.OutcomeOK).Inc()
	return key, ""
}

// publish announces a change. Failure is logged; the write already succeeded.
func (h *Handler) publish(ctx context.Context, userID string) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.Publish(ctx, changefeed.NewEvent(userID, changefeed.KindCreated)); err != nil {
		metrics.ChangeEventsPublished.WithLabelValues(metrics.OutcomeFailed).Inc()
		h.Log.Warn("publish change event failed", zap.Error(err), zap.String("user_id", userID))
		return
	}
	metrics.ChangeEventsPublished.WithLabelValues(metrics.OutcomeOK).Inc()
}

func (h *Handler) renderNewForm(w http.ResponseWriter, r *http.Request, vm applicationFormVM, status, companyType, msg string) {
	formutil.SetBase(&vm.Base, r, "Add Application", "/applications")
	if msg != "" {
		vm.SetError(msg)
	}
	vm.Statuses = formutil.Options(models.ApplicationStatuses, status)
	vm.CompanyTypes = formutil.Options(models.CompanyTypes, companyType)
	vm.Accept = attachments.AllowedExtensions()
	vm.MaxUploadMB = attachments.MaxUploadSize >> 20
	templates.Render(w, r, "application_new", vm)
}

// friendly turns a store validation error into a sentence for the form.
func friendly(err error) string {
	msg := strings.TrimPrefix(err.Error(), applicationstore.ErrInvalid.Error()+": ")
	if msg == "" {
		return "The application is invalid."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
