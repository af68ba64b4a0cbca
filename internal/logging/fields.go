package logging

import "log/slog"

// Common field names for consistent logging across the pipeline.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldError     = "error"
	FieldBatchSize = "batch_size"
	FieldIndex     = "index"
	FieldRowID     = "row_id"
	FieldPage      = "page"
	FieldEvent     = "event"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Component returns a slog attribute for a pipeline component name.
func Component(name string) slog.Attr {
	return slog.String(FieldComponent, name)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// BatchSize returns a slog attribute for a batch length.
func BatchSize(n int) slog.Attr {
	return slog.Int(FieldBatchSize, n)
}

// Index returns a slog attribute for an index name.
func Index(name string) slog.Attr {
	return slog.String(FieldIndex, name)
}

// RowID returns a slog attribute for a pending store row ID.
func RowID(id int64) slog.Attr {
	return slog.Int64(FieldRowID, id)
}
