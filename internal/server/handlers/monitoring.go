package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/server/responses"
	"git.home.luguber.info/inful/livedoc/internal/version"
)

// Status is the document state reported by the health check.
type Status interface {
	Path() string
	Fingerprint() string
	Cells() int
	LastError() error
}

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	status       Status
	started      time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(status Status, adapter *errors.HTTPErrorAdapter) *MonitoringHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(slog.Default())
	}
	return &MonitoringHandlers{status: status, started: time.Now(), errorAdapter: adapter}
}

// HandleHealthCheck reports healthy while the last reload succeeded and
// degraded (still 200) when the previous document is being served.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:      responses.StatusHealthy,
		Timestamp:   time.Now().UTC(),
		Version:     version.Version,
		Uptime:      time.Since(h.started).Seconds(),
		Document:    h.status.Path(),
		Fingerprint: h.status.Fingerprint(),
		Cells:       h.status.Cells(),
	}
	if err := h.status.LastError(); err != nil {
		health.Status = responses.StatusDegraded
		health.LastError = err.Error()
	}

	if err := writeJSON(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to write health response"))
	}
}
