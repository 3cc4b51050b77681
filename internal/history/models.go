package history

import (
	"encoding/json"
	"time"

	"subnode/internal/job"
)

// Status is the lifecycle state of a recorded job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is one row of the job ledger.
type Record struct {
	ID           string
	SourcePath   string
	StyleJSON    string
	Status       Status
	Stage        string
	ErrorKind    string
	ErrorMessage string
	ExitCode     *int
	AudioPath    string
	VTTPath      string
	SRTPath      string
	OutputPath   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Style decodes the stored style parameters. Rows written without a style
// report the defaults.
func (r Record) Style() (job.StyleParameters, error) {
	style := job.DefaultStyleParameters()
	if r.StyleJSON == "" {
		return style, nil
	}
	if err := json.Unmarshal([]byte(r.StyleJSON), &style); err != nil {
		return job.StyleParameters{}, err
	}
	return style, nil
}

// Artifacts are the paths a finished job produced.
type Artifacts struct {
	AudioPath  string
	VTTPath    string
	SRTPath    string
	OutputPath string
}

// Duration reports the elapsed time between creation and the last update.
func (r Record) Duration() time.Duration {
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		return 0
	}
	return r.UpdatedAt.Sub(r.CreatedAt)
}

// IsTerminal reports whether the job finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
