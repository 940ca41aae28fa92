package logging

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Identity fields
	FieldAssetID   = "asset_id"
	FieldJobID     = "job_id"
	FieldRequestID = "request_id"
	FieldSource    = "source"

	// Timeline fields
	FieldHandle   = "handle"
	FieldStart    = "start"
	FieldEnd      = "end"
	FieldDuration = "duration"
	FieldTime     = "time"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldCause    = "cause"

	// Path / URL fields
	FieldPath   = "path"
	FieldURL    = "url"
	FieldStatus = "status"
)
