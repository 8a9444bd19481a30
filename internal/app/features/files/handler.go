// internal/app/features/files/handler.go
package files

import (
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/attachments"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves locally stored attachments behind signed, expiring tokens.
// Only mounted when the attachment backend is Local; S3 links are presigned
// and never reach this process.
type Handler struct {
	Files *attachments.Local
	Log   *zap.Logger
}

func NewHandler(files *attachments.Local, logger *zap.Logger) *Handler {
	return &Handler{Files: files, Log: logger}
}

// ServeFile handles GET /files/{token}. The token is the credential; bad or
// expired tokens are plain 404s.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := h.Files.Resolve(token); err != nil {
		h.Log.Debug("attachment token rejected", zap.Error(err))
		http.NotFound(w, r)
		return
	}
	h.Files.ServeSigned(w, r, token)
}
