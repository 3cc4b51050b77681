package transcribe

import "context"

// Tasks understood by Whisper models.
const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"
)

// Request is one backend invocation.
type Request struct {
	AudioPath string
	OutputDir string
	Model     string
	Device    string
	Task      string
}

// RawWord is a word as reported by a backend. Start or End may be missing
// when the aligner could not place the word.
type RawWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// RawSegment groups words the way the backend segmented speech.
type RawSegment struct {
	Text  string    `json:"text"`
	Start float64   `json:"start"`
	End   float64   `json:"end"`
	Words []RawWord `json:"words"`
}

// Backend performs speech recognition with word-level timing.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, req Request) ([]RawSegment, error)
}
