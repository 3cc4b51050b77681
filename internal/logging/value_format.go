package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxConsoleValueLen bounds a rendered value on the console. JSON output is
// never truncated.
const maxConsoleValueLen = 400

// plainString renders v without quoting, for the line prefix.
func plainString(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return roundDuration(v.Duration()).String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(time.RFC3339)
	default:
		return quote(truncate(plainString(v)))
	}
}

// roundDuration trims stage timings to milliseconds.
func roundDuration(d time.Duration) time.Duration {
	if d >= time.Millisecond {
		return d.Round(time.Millisecond)
	}
	return d
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxConsoleValueLen {
		return s
	}
	return string([]rune(s)[:maxConsoleValueLen]) + "..."
}

func quote(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
