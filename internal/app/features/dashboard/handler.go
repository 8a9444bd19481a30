// internal/app/features/dashboard/handler.go
package dashboard

import (
	"time"

	uierrors "github.com/dalemusser/applytrack/internal/app/features/errors"
	applicationstore "github.com/dalemusser/applytrack/internal/app/store/applications"
	"go.uber.org/zap"
)

// recentCount is the size of the "recent applications" list.
const recentCount = applicationstore.RecentLimit

// dashboardTimeout bounds the record fetch behind every dashboard render.
const dashboardTimeout = 5 * time.Second

type Handler struct {
	Apps   *applicationstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(apps *applicationstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Apps:   apps,
		ErrLog: errLog,
		Log:    logger,
	}
}
