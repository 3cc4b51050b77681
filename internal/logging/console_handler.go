package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record for people watching a job:
//
//	2026-10-19 14:03:11 INFO [clip_1760882591_1a2b3c4d/embed] embedder: subtitles burned exit_code=0
//
// Job, stage and component move into the line prefix. A stderr tail is
// printed on its own indented line.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Leveler
	addSource bool
	preset    []field
	groups    []string
}

type field struct {
	key   string
	value slog.Value
}

// line collects the parts of one rendered record.
type line struct {
	jobID, stage, component, requestID string
	stderrTail                         string
	fields                             []field
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var l line
	for _, f := range h.preset {
		l.take(f)
	}
	record.Attrs(func(attr slog.Attr) bool {
		for _, f := range flatten(h.groups, attr) {
			l.take(f)
		}
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.In(time.Local).Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if subject := l.subject(); subject != "" {
		b.WriteString(" [")
		b.WriteString(subject)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	if l.component != "" {
		b.WriteString(l.component)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			b.WriteString(" (")
			b.WriteString(filepath.Base(src.File))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(src.Line))
			b.WriteByte(')')
		}
	}
	for _, f := range lastWins(l.fields) {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(renderValue(f.value))
	}
	if l.requestID != "" {
		b.WriteString(" req=")
		b.WriteString(l.requestID)
	}
	b.WriteByte('\n')
	if l.stderrTail != "" {
		b.WriteString("    stderr: ")
		b.WriteString(truncate(l.stderrTail))
		b.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// take routes f to the prefix or the trailing fields. Prefix fields keep
// their first value so a context-derived job id is not overwritten.
func (l *line) take(f field) {
	var slot *string
	switch f.key {
	case FieldJobID:
		slot = &l.jobID
	case FieldStage:
		slot = &l.stage
	case FieldComponent:
		slot = &l.component
	case FieldCorrelationID:
		slot = &l.requestID
	case "stderr_tail":
		l.stderrTail = plainString(f.value)
		return
	default:
		l.fields = append(l.fields, f)
		return
	}
	if *slot == "" {
		*slot = plainString(f.value)
	}
}

func (l *line) subject() string {
	switch {
	case l.jobID != "" && l.stage != "":
		return l.jobID + "/" + l.stage
	case l.jobID != "":
		return l.jobID
	default:
		return l.stage
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		next.preset = append(next.preset, flatten(h.groups, attr)...)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// flatten expands group attributes into dotted keys.
func flatten(groups []string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return nil
	}
	if attr.Value.Kind() != slog.KindGroup {
		key := attr.Key
		if len(groups) > 0 {
			key = strings.Join(groups, ".") + "." + key
		}
		return []field{{key: key, value: attr.Value}}
	}
	inner := groups
	if attr.Key != "" {
		inner = append(append([]string(nil), groups...), attr.Key)
	}
	var out []field
	for _, child := range attr.Value.Group() {
		out = append(out, flatten(inner, child)...)
	}
	return out
}

// lastWins drops repeated keys, keeping the latest value at the first position.
func lastWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i] = f
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
