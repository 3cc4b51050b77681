package logging

import (
	"errors"
	"log/slog"
	"time"

	"subnode/internal/services"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Alert(value string) Attr { return slog.String(FieldAlert, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Failure describes err for a log line: the error, its kind and, when an
// external command failed, the command, exit code and the last stderr lines.
func Failure(err error) []Attr {
	attrs := []Attr{Error(err), String(FieldErrorKind, services.Kind(err))}
	if errors.Is(err, services.ErrValidation) {
		attrs = append(attrs, String(FieldErrorHint, "fix the job inputs and resubmit"))
	}
	if result, ok := services.CommandOf(err); ok {
		attrs = append(attrs,
			String("command", result.Command),
			Int("exit_code", result.ExitCode),
			String("stderr_tail", result.StderrTail(stderrTailLines)),
		)
	}
	return attrs
}

const stderrTailLines = 5

// Args converts attrs to the variadic form slog's level methods take.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
