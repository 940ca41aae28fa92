// Package api holds the local service's wire types and a client for it.
package api

import "time"

// AssetInfo is the body of GET /api/assets/{id}/info.
type AssetInfo struct {
	ID       string  `json:"id"`
	Path     string  `json:"path,omitempty"`
	Title    string  `json:"title,omitempty"`
	Duration float64 `json:"duration"`
}

// TrimRequest is the body of POST /api/assets/{id}/trim.
type TrimRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TrimAccepted is the 202 body of POST /api/assets/{id}/trim.
type TrimAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// TrimJob is the body of GET /api/trims/{jobID}.
type TrimJob struct {
	JobID      string     `json:"job_id"`
	AssetID    string     `json:"asset_id"`
	Start      float64    `json:"start"`
	End        float64    `json:"end"`
	Status     string     `json:"status"`
	OutputPath string     `json:"output_path,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status string `json:"status"`
}

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}
