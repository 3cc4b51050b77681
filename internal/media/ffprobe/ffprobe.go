package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"subnode/internal/services"
)

// Result holds the streams and container fields the pipeline reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one elementary stream.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format is the container section.
type Format struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Prober runs ffprobe.
type Prober struct {
	binary string
	runner services.CommandRunner
}

// Option customizes a Prober.
type Option func(*Prober)

// WithCommandRunner overrides how ffprobe is executed.
func WithCommandRunner(runner services.CommandRunner) Option {
	return func(p *Prober) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// New returns a Prober for binary, defaulting to "ffprobe" on PATH.
func New(binary string, opts ...Option) *Prober {
	p := &Prober{binary: strings.TrimSpace(binary), runner: services.ExecRunner{}}
	if p.binary == "" {
		p.binary = "ffprobe"
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inspect probes path. The command outcome is returned even on failure so
// callers can report exit code and stderr.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, services.CommandResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.CommandResult{}, errors.New("ffprobe: empty path")
	}

	res, err := p.runner.Run(ctx, p.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, res, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var result Result
	if err := json.Unmarshal([]byte(res.Stdout), &result); err != nil {
		return Result{}, res, fmt.Errorf("ffprobe output for %s: %w", path, err)
	}
	return result, res, nil
}

// PrimaryAudio returns the first audio stream, which is the one extraction maps.
func (r Result) PrimaryAudio() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration, or 0 when ffprobe did not
// report a usable one.
func (r Result) DurationSeconds() float64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
