// internal/app/features/applications/handler.go
package applications

import (
	"time"

	uierrors "github.com/dalemusser/applytrack/internal/app/features/errors"
	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"github.com/dalemusser/applytrack/internal/app/system/attachments"
	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"go.uber.org/zap"
)

// Handler serves the application list, create form, detail page, resume
// downloads and CSV import/export. Every query is scoped to the signed-in user.
type Handler struct {
	Apps     *applicationstore.Store
	Files    attachments.Store
	Notifier changefeed.Notifier
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// ResumeURLTTL is the lifetime of resume download links.
	ResumeURLTTL time.Duration
}

func NewHandler(apps *applicationstore.Store, files attachments.Store, notifier changefeed.Notifier, ttl time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Apps:         apps,
		Files:        files,
		Notifier:     notifier,
		ErrLog:       errLog,
		Log:          logger,
		ResumeURLTTL: ttl,
	}
}
