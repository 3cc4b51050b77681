package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"subnode/internal/config"
)

// LogFileName is the file written under the state directory.
const LogFileName = "subnode.log"

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options describes logger construction parameters. OutputPaths accepts
// "stdout", "stderr" or file paths; it defaults to stderr.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatConsole
	}
	if format != FormatConsole && format != FormatJSON {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	out, err := openSinks(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return slog.New(newJSONHandler(out, level, addSource)), nil
	}
	return slog.New(newConsoleHandler(out, level, addSource)), nil
}

// NewFromConfig logs to stderr and to LogFileName under the state directory.
// Stdout stays free for machine-readable command output.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: FormatConsole})
	}
	paths := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.StateDir); dir != "" {
		paths = append(paths, filepath.Join(dir, LogFileName))
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, OutputPaths: paths})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openSinks opens every distinct destination and fans writes out to all of them.
func openSinks(paths []string) (io.Writer, error) {
	var writers []io.Writer
	var seen []string
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || slices.Contains(seen, path) {
			continue
		}
		seen = append(seen, path)

		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create log directory for %s: %w", path, err)
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", path, err)
			}
			writers = append(writers, file)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

// newJSONHandler emits one object per line with "ts", a lower-case level and
// a short file:line source.
func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String(slog.LevelKey, strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
