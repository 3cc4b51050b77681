package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMediaRead     = errors.New("media read error")
	ErrTranscription = errors.New("transcription error")
	ErrIO            = errors.New("io error")
	ErrEncode        = errors.New("encode failure")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Error kinds reported by ErrorKind and persisted in the job history.
const (
	KindMediaRead     = "media_read"
	KindTranscription = "transcription"
	KindIO            = "io"
	KindEncode        = "encode"
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindUnknown       = "unknown"
)

// Error is a stage-aware failure. It matches its marker and its cause with
// errors.Is and carries the external command outcome when one was involved.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Command   *CommandResult
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	marker := e.Marker
	if marker == nil {
		marker = ErrIO
	}
	var b strings.Builder
	b.WriteString(marker.Error())
	b.WriteString(": ")
	b.WriteString(buildDetail(e.Stage, e.Operation, e.Message))
	if e.Command != nil && e.Command.Command != "" {
		fmt.Fprintf(&b, " (cmd=%s exit=%d)", e.Command.Command, e.Command.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the marker and the underlying cause.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Marker != nil {
		out = append(out, e.Marker)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// ErrorKind classifies the failure for persistence and exit reporting.
func (e *Error) ErrorKind() string {
	if e == nil {
		return KindUnknown
	}
	return kindOf(e.Marker)
}

// Wrap builds a stage-tagged error. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// WrapCommand is Wrap for failures of an external command; the result is
// retained so callers can surface the exit code and stderr.
func WrapCommand(marker error, stage, operation, message string, result CommandResult, err error) error {
	wrapped := Wrap(marker, stage, operation, message, err).(*Error)
	wrapped.Command = &result
	return wrapped
}

// Kind returns the failure kind of err, or KindUnknown.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var classifier interface{ ErrorKind() string }
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	for _, marker := range []error{ErrMediaRead, ErrTranscription, ErrIO, ErrEncode, ErrValidation, ErrConfiguration} {
		if errors.Is(err, marker) {
			return kindOf(marker)
		}
	}
	return KindUnknown
}

// StageOf returns the stage recorded on the first stage-aware error in the chain.
func StageOf(err error) string {
	var stageErr *Error
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// CommandOf returns the external command outcome attached to err, if any.
func CommandOf(err error) (CommandResult, bool) {
	var stageErr *Error
	if errors.As(err, &stageErr) && stageErr.Command != nil {
		return *stageErr.Command, true
	}
	return CommandResult{}, false
}

func kindOf(marker error) string {
	switch marker {
	case ErrMediaRead:
		return KindMediaRead
	case ErrTranscription:
		return KindTranscription
	case ErrIO:
		return KindIO
	case ErrEncode:
		return KindEncode
	case ErrValidation:
		return KindValidation
	case ErrConfiguration:
		return KindConfiguration
	default:
		return KindUnknown
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
