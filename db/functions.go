package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*Asset, error) {
	var a Asset
	var duration sql.NullFloat64
	if err := row.Scan(&a.ID, &a.Path, &a.Title, &a.Filesize, &duration, &a.CreatedAt); err != nil {
		return nil, err
	}
	if duration.Valid {
		d := duration.Float64
		a.Duration = &d
	}
	return &a, nil
}

func scanTrimJob(row rowScanner) (*TrimJob, error) {
	var j TrimJob
	var startedAt, finishedAt sql.NullTime
	if err := row.Scan(&j.ID, &j.AssetID, &j.Start, &j.End, &j.Status, &j.OutputPath, &j.Log, &j.CreatedAt, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		j.FinishedAt = &finishedAt.Time
	}
	return &j, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// InsertAsset inserts an assets row. CreatedAt defaults to now.
func InsertAsset(database *sql.DB, a Asset) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	var duration any
	if a.Duration != nil {
		duration = *a.Duration
	}
	if _, err := database.Exec(InsertAssetSQL, a.ID, a.Path, a.Title, a.Filesize, duration, a.CreatedAt); err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// SelectAssetByID returns a single assets row, or ErrNotFound.
func SelectAssetByID(database *sql.DB, id string) (*Asset, error) {
	a, err := scanAsset(database.QueryRow(SelectAssetByIDSQL, id))
	if err != nil {
		return nil, fmt.Errorf("select asset %q: %w", id, notFound(err))
	}
	return a, nil
}

// SelectAssets returns all assets ordered by creation time.
func SelectAssets(database *sql.DB) ([]Asset, error) {
	rows, err := database.Query(SelectAssetsSQL)
	if err != nil {
		return nil, fmt.Errorf("select assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// UpdateAssetDuration caches a probed duration.
func UpdateAssetDuration(database *sql.DB, id string, duration float64) error {
	res, err := database.Exec(UpdateAssetDurationSQL, duration, id)
	if err != nil {
		return fmt.Errorf("update asset duration: %w", err)
	}
	return expectOne(res, id)
}

// DeleteAsset deletes an asset and, by cascade, its trim jobs.
func DeleteAsset(database *sql.DB, id string) error {
	res, err := database.Exec(DeleteAssetSQL, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return expectOne(res, id)
}

// InsertTrimJob queues a pending trim job.
func InsertTrimJob(database *sql.DB, id, assetID string, start, end float64) (*TrimJob, error) {
	now := time.Now().UTC()
	if _, err := database.Exec(InsertTrimJobSQL, id, assetID, start, end, now); err != nil {
		return nil, fmt.Errorf("insert trim job: %w", err)
	}
	return &TrimJob{ID: id, AssetID: assetID, Start: start, End: end, Status: StatusPending, CreatedAt: now}, nil
}

// SelectTrimJobByID returns a single trim_jobs row, or ErrNotFound.
func SelectTrimJobByID(database *sql.DB, id string) (*TrimJob, error) {
	j, err := scanTrimJob(database.QueryRow(SelectTrimJobByIDSQL, id))
	if err != nil {
		return nil, fmt.Errorf("select trim job %q: %w", id, notFound(err))
	}
	return j, nil
}

// SelectTrimJobsByAsset returns an asset's trim jobs, newest first.
func SelectTrimJobsByAsset(database *sql.DB, assetID string) ([]TrimJob, error) {
	rows, err := database.Query(SelectTrimJobsByAssetSQL, assetID)
	if err != nil {
		return nil, fmt.Errorf("select trim jobs: %w", err)
	}
	defer rows.Close()

	var jobs []TrimJob
	for rows.Next() {
		j, err := scanTrimJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trim job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// ClaimNextPendingTrimJob moves the oldest pending job to processing and returns
// it, or returns nil when the queue is empty.
func ClaimNextPendingTrimJob(database *sql.DB, now time.Time) (*TrimJob, error) {
	j, err := scanTrimJob(database.QueryRow(SelectNextPendingTrimJobSQL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select pending trim job: %w", err)
	}

	res, err := database.Exec(MarkTrimJobProcessingSQL, now, j.ID)
	if err != nil {
		return nil, fmt.Errorf("mark trim job processing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	j.Status = StatusProcessing
	j.StartedAt = &now
	return j, nil
}

// CountPendingTrimJobs returns the queue length.
func CountPendingTrimJobs(database *sql.DB) (int, error) {
	var n int
	if err := database.QueryRow(CountPendingTrimJobsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending trim jobs: %w", err)
	}
	return n, nil
}

// MarkTrimJobComplete records a finished cut.
func MarkTrimJobComplete(database *sql.DB, id string, finishedAt time.Time, outputPath string) error {
	if _, err := database.Exec(MarkTrimJobCompleteSQL, finishedAt, outputPath, id); err != nil {
		return fmt.Errorf("mark trim job complete: %w", err)
	}
	return nil
}

// MarkTrimJobError records a failed cut with its log.
func MarkTrimJobError(database *sql.DB, id string, finishedAt time.Time, logMsg string) error {
	if _, err := database.Exec(MarkTrimJobErrorSQL, finishedAt, logMsg, id); err != nil {
		return fmt.Errorf("mark trim job error: %w", err)
	}
	return nil
}

// ResetStaleTrimJobs returns jobs left in processing by a crashed worker to the queue.
func ResetStaleTrimJobs(database *sql.DB) (int64, error) {
	res, err := database.Exec(ResetStaleTrimJobsSQL)
	if err != nil {
		return 0, fmt.Errorf("reset stale trim jobs: %w", err)
	}
	return res.RowsAffected()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return nil
}
