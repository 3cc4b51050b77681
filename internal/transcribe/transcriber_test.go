package transcribe

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subnode/internal/config"
	"subnode/internal/services"
)

type stubBackend struct {
	segments []RawSegment
	err      error
	got      Request
	deadline bool
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Transcribe(ctx context.Context, req Request) ([]RawSegment, error) {
	s.got = req
	_, s.deadline = ctx.Deadline()
	return s.segments, s.err
}

func prepareAudio(t *testing.T, jobID string) string {
	t.Helper()
	audioDir := t.TempDir()
	dir := filepath.Join(audioDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, jobID+".wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return audioDir
}

func TestTranscribeConvertsSegments(t *testing.T) {
	audioDir := prepareAudio(t, "job")
	backend := &stubBackend{segments: []RawSegment{{Words: []RawWord{
		{Word: "hello", Start: f64(0), End: f64(0.5)},
		{Word: "world", Start: f64(0.5), End: f64(1)},
	}}}}
	tr := New(audioDir, backend, WithAcceleratorProbe(func() bool { return false }))

	segments, err := tr.Transcribe(context.Background(), "job", true)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 1 || len(segments[0]) != 2 || segments[0][1].EndMS != 1000 {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if backend.got.Task != TaskTranslate {
		t.Fatalf("expected translate task, got %q", backend.got.Task)
	}
	if backend.got.Model != "large-v2" {
		t.Fatalf("expected default large-v2 model, got %q", backend.got.Model)
	}
	if backend.got.Device != config.DeviceCPU {
		t.Fatalf("expected cpu without accelerator, got %q", backend.got.Device)
	}
	if backend.got.AudioPath != filepath.Join(audioDir, "job", "job.wav") {
		t.Fatalf("unexpected audio path %q", backend.got.AudioPath)
	}
	if backend.deadline {
		t.Fatal("expected no deadline without timeout")
	}
}

func TestDeviceSelection(t *testing.T) {
	gpu := func() bool { return true }
	if got := New("", nil, WithAcceleratorProbe(gpu)).Device(); got != config.DeviceCUDA {
		t.Fatalf("auto with accelerator = %q", got)
	}
	if got := New("", nil, WithAcceleratorProbe(gpu), WithDevice(config.DeviceCPU)).Device(); got != config.DeviceCPU {
		t.Fatalf("forced cpu = %q", got)
	}
	if got := New("", nil, WithAcceleratorProbe(func() bool { return false }), WithDevice(config.DeviceCUDA)).Device(); got != config.DeviceCUDA {
		t.Fatalf("forced cuda = %q", got)
	}
}

func TestTranscribeErrors(t *testing.T) {
	noGPU := WithAcceleratorProbe(func() bool { return false })

	t.Run("missing audio", func(t *testing.T) {
		_, err := New(t.TempDir(), &stubBackend{}, noGPU).Transcribe(context.Background(), "job", false)
		if !errors.Is(err, services.ErrTranscription) {
			t.Fatalf("expected ErrTranscription, got %v", err)
		}
	})
	t.Run("backend failure", func(t *testing.T) {
		audioDir := prepareAudio(t, "job")
		boom := errors.New("boom")
		_, err := New(audioDir, &stubBackend{err: boom}, noGPU).Transcribe(context.Background(), "job", false)
		if !errors.Is(err, services.ErrTranscription) || !errors.Is(err, boom) {
			t.Fatalf("expected wrapped backend error, got %v", err)
		}
		if services.StageOf(err) != services.StageTranscribe {
			t.Fatalf("unexpected stage %q", services.StageOf(err))
		}
	})
	t.Run("command failure keeps result", func(t *testing.T) {
		audioDir := prepareAudio(t, "job")
		cmdErr := &commandError{result: services.CommandResult{Command: "uvx", ExitCode: 2}, err: errors.New("exit status 2")}
		_, err := New(audioDir, &stubBackend{err: cmdErr}, noGPU).Transcribe(context.Background(), "job", false)
		res, ok := services.CommandOf(err)
		if !ok || res.ExitCode != 2 {
			t.Fatalf("expected command result, got %+v (%v)", res, err)
		}
	})
	t.Run("zero segments", func(t *testing.T) {
		audioDir := prepareAudio(t, "job")
		_, err := New(audioDir, &stubBackend{}, noGPU).Transcribe(context.Background(), "job", false)
		if !errors.Is(err, services.ErrTranscription) {
			t.Fatalf("expected ErrTranscription, got %v", err)
		}
	})
}

func TestTranscribeAppliesTimeout(t *testing.T) {
	audioDir := prepareAudio(t, "job")
	backend := &stubBackend{segments: []RawSegment{{}}}
	tr := New(audioDir, backend, WithTimeout(time.Minute), WithAcceleratorProbe(func() bool { return false }))
	if _, err := tr.Transcribe(context.Background(), "job", false); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !backend.deadline {
		t.Fatal("expected deadline when timeout configured")
	}
}

func TestNewFromConfigSelectsBackend(t *testing.T) {
	cfg := config.Default()
	tr, err := NewFromConfig(&cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if tr.Backend().Name() != "whisperx" {
		t.Fatalf("expected whisperx backend, got %q", tr.Backend().Name())
	}

	cfg.Transcription.Backend = config.BackendHTTP
	tr, err = NewFromConfig(&cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if tr.Backend().Name() != "http" {
		t.Fatalf("expected http backend, got %q", tr.Backend().Name())
	}

	cfg.Transcription.Backend = "vosk"
	if _, err := NewFromConfig(&cfg, nil, nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewFromConfigAppliesHTTPTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Backend = config.BackendHTTP
	cfg.Transcription.HTTPURL = "http://localhost:9000/"
	cfg.Transcription.TimeoutSeconds = 90

	tr, err := NewFromConfig(&cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	backend, ok := tr.Backend().(*HTTP)
	if !ok {
		t.Fatalf("expected *HTTP backend, got %T", tr.Backend())
	}
	if backend.cfg.Timeout != 90*time.Second {
		t.Fatalf("config timeout = %v, want 90s", backend.cfg.Timeout)
	}
	client, ok := backend.client.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client, got %T", backend.client)
	}
	if client.Timeout != 90*time.Second {
		t.Fatalf("client timeout = %v, want 90s", client.Timeout)
	}
}
