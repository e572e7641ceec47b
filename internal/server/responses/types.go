// Package responses defines the JSON bodies served by the preview server.
package responses

import "time"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Uptime      float64   `json:"uptime"`
	Document    string    `json:"document"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Cells       int       `json:"cells"`
	LastError   string    `json:"last_error,omitempty"`
}

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)
