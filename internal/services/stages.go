package services

// Pipeline stage names used in errors, logs, and the job history.
const (
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageFormat     = "format"
	StageEmbed      = "embed"
)

// Stages lists the pipeline stages in execution order.
func Stages() []string {
	return []string{StageExtract, StageTranscribe, StageFormat, StageEmbed}
}
