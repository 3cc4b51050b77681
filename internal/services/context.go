package services

import "context"

// Context keys for the identifiers that follow a job through its stages and
// an HTTP request through the node host.
type ctxKey int

const (
	jobIDKey ctxKey = iota
	stageKey
	requestIDKey
)

// WithJobID tags ctx with the job identifier. Blank ids leave ctx unchanged.
func WithJobID(ctx context.Context, id string) context.Context {
	return withString(ctx, jobIDKey, id)
}

// JobIDFromContext returns the job identifier, if any.
func JobIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, jobIDKey)
}

// WithStage tags ctx with the running stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithRequestID tags ctx with the host request that triggered the job.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
