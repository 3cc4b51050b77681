package job

import "strings"

// Job is one request to caption a video. It lives for the duration of a
// pipeline run; only its artifacts and history row outlive it.
type Job struct {
	ID         string
	SourcePath string
	Style      StyleParameters
}

// New builds a job with a fresh identifier and normalized style.
func New(sourcePath string, style StyleParameters) Job {
	sourcePath = strings.TrimSpace(sourcePath)
	return Job{
		ID:         NewID(sourcePath),
		SourcePath: sourcePath,
		Style:      style.Normalize(),
	}
}
