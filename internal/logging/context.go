package logging

import (
	"context"
	"log/slog"

	"subnode/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for pipeline job identifiers.
	FieldJobID = "job_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType names the event a log line records (stage_start, encode_complete, ...).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator-facing next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the failure classification (media_read, encode, ...).
	FieldErrorKind = "error_kind"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJobID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

// WithJobID is a convenience wrapper over services.WithJobID.
func WithJobID(ctx context.Context, id string) context.Context {
	return services.WithJobID(ctx, id)
}

// WithStage is a convenience wrapper over services.WithStage.
func WithStage(ctx context.Context, stage string) context.Context {
	return services.WithStage(ctx, stage)
}
