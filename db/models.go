package db

import "time"

// Trim job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Asset represents a row in the assets table.
type Asset struct {
	ID        string
	Path      string
	Title     string
	Filesize  int64
	Duration  *float64
	CreatedAt time.Time
}

// TrimJob represents a row in the trim_jobs table.
type TrimJob struct {
	ID         string
	AssetID    string
	Start      float64
	End        float64
	Status     string
	OutputPath string
	Log        string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Finished reports whether the job reached a terminal status.
func (j TrimJob) Finished() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}
