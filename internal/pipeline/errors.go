package pipeline

import (
	"fmt"

	"subnode/internal/services"
)

// Failure kinds surfaced by Run. They alias the shared sentinels so that
// errors returned by the stage packages match them directly.
var (
	ErrMediaRead     = services.ErrMediaRead
	ErrTranscription = services.ErrTranscription
	ErrIO            = services.ErrIO
	ErrEncode        = services.ErrEncode
	ErrValidation    = services.ErrValidation
)

// StageValidate tags failures found in the job's inputs before any stage ran.
const StageValidate = "validate"

// StageError tags the stage that failed.
type StageError struct {
	Stage string
	Kind  string
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s stage failed", e.Stage)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind reports the failure classification.
func (e *StageError) ErrorKind() string {
	if e == nil {
		return services.KindUnknown
	}
	return e.Kind
}

func newStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Kind: services.Kind(err), Err: err}
}
