package hostapi

import (
	"time"

	"subnode/internal/history"
	"subnode/internal/node"
)

// NodeInfo describes one registered node.
type NodeInfo struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Function    string            `json:"function"`
	Inputs      []node.InputSpec  `json:"inputs"`
	Outputs     []node.OutputSpec `json:"outputs"`
	InputTypes  map[string]any    `json:"input_types"`
	ReturnTypes []string          `json:"return_types"`
}

// NodeListResponse is returned by GET /nodes.
type NodeListResponse struct {
	Nodes []NodeInfo `json:"nodes"`
}

// RunRequest is the body of POST /nodes/:id/run.
type RunRequest struct {
	Inputs node.Inputs `json:"inputs"`
}

// RunResponse is returned by a successful run.
type RunResponse struct {
	RequestID string       `json:"request_id"`
	Outputs   node.Outputs `json:"outputs"`
	Result    []any        `json:"result"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Kind       string `json:"kind"`
	Stage      string `json:"stage,omitempty"`
	Message    string `json:"message"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	StderrTail string `json:"stderr_tail,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	RequestID string    `json:"request_id,omitempty"`
	Error     ErrorBody `json:"error"`
}

// JobView is the JSON form of a history record.
type JobView struct {
	ID           string    `json:"id"`
	SourcePath   string    `json:"source_path"`
	Status       string    `json:"status"`
	Stage        string    `json:"stage,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ExitCode     *int      `json:"exit_code,omitempty"`
	VTTPath      string    `json:"vtt_path,omitempty"`
	SRTPath      string    `json:"srt_path,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobListResponse is returned by GET /jobs.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// NewJobView converts a history record to its wire form.
func NewJobView(record *history.Record) JobView {
	return JobView{
		ID:           record.ID,
		SourcePath:   record.SourcePath,
		Status:       string(record.Status),
		Stage:        record.Stage,
		ErrorKind:    record.ErrorKind,
		ErrorMessage: record.ErrorMessage,
		ExitCode:     record.ExitCode,
		VTTPath:      record.VTTPath,
		SRTPath:      record.SRTPath,
		OutputPath:   record.OutputPath,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
