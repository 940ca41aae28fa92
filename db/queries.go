package db

import (
	_ "embed"
)

// Schema and migrations

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Asset queries

//go:embed sql/insert_asset.sql
var InsertAssetSQL string

//go:embed sql/select_asset_by_id.sql
var SelectAssetByIDSQL string

//go:embed sql/select_assets.sql
var SelectAssetsSQL string

//go:embed sql/update_asset_duration.sql
var UpdateAssetDurationSQL string

//go:embed sql/delete_asset.sql
var DeleteAssetSQL string

// Trim job queries

//go:embed sql/insert_trim_job.sql
var InsertTrimJobSQL string

//go:embed sql/select_trim_job_by_id.sql
var SelectTrimJobByIDSQL string

//go:embed sql/select_trim_jobs_by_asset.sql
var SelectTrimJobsByAssetSQL string

//go:embed sql/select_next_pending_trim_job.sql
var SelectNextPendingTrimJobSQL string

//go:embed sql/count_pending_trim_jobs.sql
var CountPendingTrimJobsSQL string

//go:embed sql/mark_trim_job_processing.sql
var MarkTrimJobProcessingSQL string

//go:embed sql/mark_trim_job_complete.sql
var MarkTrimJobCompleteSQL string

//go:embed sql/mark_trim_job_error.sql
var MarkTrimJobErrorSQL string

//go:embed sql/reset_stale_trim_jobs.sql
var ResetStaleTrimJobsSQL string
