package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"subnode/internal/services"
)

// ProbeWithAudio is ffprobe output for a file with one video and one audio stream.
const ProbeWithAudio = `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"},{"index":1,"codec_type":"audio","codec_name":"aac"}],"format":{"duration":"1.000000","size":"4096"}}`

// ProbeSilent is ffprobe output for a file without audio.
const ProbeSilent = `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"}],"format":{"duration":"1.000000"}}`

// ClipTranscript is WhisperX output for a one second clip saying "hello world".
const ClipTranscript = `{"segments":[{"text":" hello world","start":0.0,"end":1.0,"words":[{"word":"hello","start":0.0,"end":0.5},{"word":"world","start":0.5,"end":1.0}]}]}`

// ClipVTT is the caption track expected for ClipTranscript.
const ClipVTT = "WEBVTT\n\n00:00:00.000 --> 00:00:00.500\nhello\n\n00:00:00.500 --> 00:00:01.000\nworld\n\n"

// FakeTools stands in for ffprobe, ffmpeg and uvx. Extraction writes a WAV
// placeholder, transcription writes Transcript as WhisperX JSON, and an encode
// writes the output file unless EncodeExitCode is non-zero.
type FakeTools struct {
	ProbeJSON      string
	Transcript     string
	EncodeExitCode int
	EncodeStderr   string

	mu    sync.Mutex
	calls []services.CommandResult
}

// NewFakeTools returns tools that succeed on the clip scenario.
func NewFakeTools() *FakeTools {
	return &FakeTools{ProbeJSON: ProbeWithAudio, Transcript: ClipTranscript}
}

// Calls returns the recorded invocations in order.
func (f *FakeTools) Calls() []services.CommandResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CommandNames returns the base names of the invoked binaries in order.
func (f *FakeTools) CommandNames() []string {
	calls := f.Calls()
	names := make([]string, 0, len(calls))
	for _, call := range calls {
		names = append(names, filepath.Base(call.Command))
	}
	return names
}

// Run implements services.CommandRunner.
func (f *FakeTools) Run(ctx context.Context, name string, args ...string) (services.CommandResult, error) {
	res := services.CommandResult{Command: name, Args: slices.Clone(args)}
	defer func() {
		f.mu.Lock()
		f.calls = append(f.calls, res)
		f.mu.Unlock()
	}()
	if err := ctx.Err(); err != nil {
		res.ExitCode = -1
		return res, err
	}

	switch filepath.Base(name) {
	case "ffprobe":
		res.Stdout = f.ProbeJSON
		return res, nil
	case "ffmpeg":
		if slices.Contains(args, "-vf") {
			return f.encode(res, args)
		}
		return res, writeLast(args, "RIFF")
	case "uvx":
		return f.transcribe(res, args)
	}
	res.ExitCode = 127
	return res, fmt.Errorf("unexpected command %s", name)
}

func (f *FakeTools) encode(res services.CommandResult, args []string) (services.CommandResult, error) {
	if f.EncodeExitCode != 0 {
		res.ExitCode = f.EncodeExitCode
		res.Stderr = f.EncodeStderr
		return res, fmt.Errorf("exit status %d", f.EncodeExitCode)
	}
	return res, writeLast(args, "encoded video")
}

func (f *FakeTools) transcribe(res services.CommandResult, args []string) (services.CommandResult, error) {
	audioPath := valueAfter(args, "whisperx")
	outputDir := valueAfter(args, "--output_dir")
	if audioPath == "" || outputDir == "" {
		res.ExitCode = 2
		return res, errors.New("whisperx arguments incomplete")
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return res, os.WriteFile(filepath.Join(outputDir, base+".json"), []byte(f.Transcript), 0o644)
}

func valueAfter(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}

func writeLast(args []string, content string) error {
	if len(args) == 0 {
		return errors.New("no output path")
	}
	return os.WriteFile(args[len(args)-1], []byte(content), 0o644)
}
