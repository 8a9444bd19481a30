package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/applytrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is an optional dependency checked by /health (Redis, object storage).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Checks map[string]Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. checks may be nil.
func NewHandler(client *mongo.Client, checks map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Checks: checks,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Message      string            `json:"message,omitempty"`
	Error        string            `json:"error,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "dependencies":{"redis":"ok"} }
//
// On any failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if len(h.Checks) > 0 {
		resp.Dependencies = make(map[string]string, len(h.Checks))
		for name, p := range h.Checks {
			if err := p.Ping(ctx); err != nil {
				h.Log.Error("health-check: dependency ping failed",
					zap.String("dependency", name), zap.Error(err))
				resp.Dependencies[name] = "error: " + err.Error()
				resp.Status = "error"
				resp.Message = name + " unavailable"
				continue
			}
			resp.Dependencies[name] = "ok"
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
