package logging

import "log/slog"

// FieldImpact carries the user-facing consequence of a warning.
const FieldImpact = "impact"

const defaultHint = "check logs for details"

// WarnWithContext logs a warning that always names its event, a next step
// and the impact. Missing fields get generic values.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withEventDefaults(attrs, eventType)
	if !hasKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "operation completed with warnings"))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error that always names its event and a next step.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, Args(withEventDefaults(attrs, eventType)...)...)
}

func withEventDefaults(attrs []Attr, eventType string) []Attr {
	if !hasKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, defaultHint))
	}
	return attrs
}
