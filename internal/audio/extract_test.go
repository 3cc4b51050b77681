package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subnode/internal/services"
)

const probeWithAudio = `{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"1.0"}}`

type fakeRunner struct {
	probeJSON  string
	ffmpegFail bool
	calls      []string
	lastArgs   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (services.CommandResult, error) {
	f.calls = append(f.calls, name)
	res := services.CommandResult{Command: name, Args: args}
	switch name {
	case "ffprobe":
		res.Stdout = f.probeJSON
		return res, nil
	case "ffmpeg":
		f.lastArgs = args
		if f.ffmpegFail {
			res.ExitCode = 1
			res.Stderr = "Invalid data found when processing input"
			return res, errors.New("exit status 1")
		}
		dest := args[len(args)-1]
		return res, os.WriteFile(dest, []byte("RIFF"), 0o644)
	}
	return res, errors.New("unexpected command " + name)
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestExtractWritesWavUnderJobDirectory(t *testing.T) {
	audioDir := t.TempDir()
	runner := &fakeRunner{probeJSON: probeWithAudio}
	extractor := NewExtractor(audioDir, "ffmpeg", "ffprobe", WithCommandRunner(runner))

	got, err := extractor.Extract(context.Background(), writeSource(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(got.JobID, "clip_") {
		t.Fatalf("unexpected job id %q", got.JobID)
	}
	want := filepath.Join(audioDir, got.JobID, got.JobID+".wav")
	if got.AudioPath != want {
		t.Fatalf("audio path = %q, want %q", got.AudioPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected wav written: %v", err)
	}
	if track, ok := got.Probe.PrimaryAudio(); !ok || track.Index != 1 {
		t.Fatalf("expected probe retained, got %+v", got.Probe)
	}
	joined := strings.Join(runner.lastArgs, " ")
	for _, fragment := range []string{"-ac 1", "-ar 16000", "-c:a pcm_s16le", "-vn"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in ffmpeg args: %s", fragment, joined)
		}
	}
}

func TestExtractMissingSourceWritesNothing(t *testing.T) {
	audioDir := t.TempDir()
	runner := &fakeRunner{probeJSON: probeWithAudio}
	extractor := NewExtractor(audioDir, "ffmpeg", "ffprobe", WithCommandRunner(runner))

	_, err := extractor.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, services.ErrMediaRead) {
		t.Fatalf("expected ErrMediaRead, got %v", err)
	}
	if services.StageOf(err) != services.StageExtract {
		t.Fatalf("expected extract stage, got %q", services.StageOf(err))
	}
	entries, readErr := os.ReadDir(audioDir)
	if readErr != nil {
		t.Fatalf("read audio dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected audio dir untouched, found %d entries", len(entries))
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no subprocesses, got %v", runner.calls)
	}
}

func TestExtractRejectsDirectory(t *testing.T) {
	extractor := NewExtractor(t.TempDir(), "ffmpeg", "ffprobe", WithCommandRunner(&fakeRunner{}))
	_, err := extractor.Extract(context.Background(), t.TempDir())
	if !errors.Is(err, services.ErrMediaRead) {
		t.Fatalf("expected ErrMediaRead for directory, got %v", err)
	}
}

func TestExtractRejectsSilentSource(t *testing.T) {
	audioDir := t.TempDir()
	runner := &fakeRunner{probeJSON: `{"streams":[{"codec_type":"video"}],"format":{}}`}
	extractor := NewExtractor(audioDir, "ffmpeg", "ffprobe", WithCommandRunner(runner))

	_, err := extractor.Extract(context.Background(), writeSource(t))
	if !errors.Is(err, services.ErrMediaRead) {
		t.Fatalf("expected ErrMediaRead, got %v", err)
	}
	if entries, _ := os.ReadDir(audioDir); len(entries) != 0 {
		t.Fatal("expected audio dir untouched for silent source")
	}
}

func TestExtractSurfacesFFmpegFailure(t *testing.T) {
	runner := &fakeRunner{probeJSON: probeWithAudio, ffmpegFail: true}
	extractor := NewExtractor(t.TempDir(), "ffmpeg", "ffprobe", WithCommandRunner(runner))

	_, err := extractor.ExtractJob(context.Background(), "clip_1_abcdef01", writeSource(t))
	if !errors.Is(err, services.ErrMediaRead) {
		t.Fatalf("expected ErrMediaRead, got %v", err)
	}
	res, ok := services.CommandOf(err)
	if !ok {
		t.Fatal("expected command result attached")
	}
	if res.ExitCode != 1 || !strings.Contains(res.Stderr, "Invalid data") {
		t.Fatalf("unexpected command result %+v", res)
	}
}

func TestExtractJobRejectsUnsafeID(t *testing.T) {
	extractor := NewExtractor(t.TempDir(), "ffmpeg", "ffprobe", WithCommandRunner(&fakeRunner{}))
	_, err := extractor.ExtractJob(context.Background(), "../escape", writeSource(t))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
