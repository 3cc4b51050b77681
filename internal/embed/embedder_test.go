package embed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subnode/internal/job"
	"subnode/internal/services"
)

type fakeFFmpeg struct {
	args     []string
	exitCode int
	write    bool
	err      error
}

func (f *fakeFFmpeg) Run(_ context.Context, name string, args ...string) (services.CommandResult, error) {
	f.args = args
	res := services.CommandResult{Command: name, Args: args, ExitCode: f.exitCode, Stderr: "frame=1\nConversion failed!"}
	if f.write {
		if err := os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644); err != nil {
			return res, err
		}
	}
	return res, f.err
}

func setupTrack(t *testing.T, jobID string) (string, string) {
	t.Helper()
	subtitlesDir := t.TempDir()
	dir := filepath.Join(subtitlesDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, jobID+".vtt"), []byte("WEBVTT\n\n"), 0o644); err != nil {
		t.Fatalf("write vtt: %v", err)
	}
	return subtitlesDir, filepath.Join(t.TempDir(), "out")
}

func TestEmbedRunsFFmpeg(t *testing.T) {
	subtitlesDir, outputDir := setupTrack(t, "clip_1_aa")
	runner := &fakeFFmpeg{write: true}
	e := NewEmbedder(subtitlesDir, outputDir, "ffmpeg", WithCommandRunner(runner))

	res, err := e.Embed(context.Background(), "/videos/clip.mp4", "clip_1_aa", job.DefaultStyleParameters())
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	want := filepath.Join(outputDir, "clip_1_aa_output.mp4")
	if res.OutputPath != want {
		t.Fatalf("output = %q, want %q", res.OutputPath, want)
	}
	if res.Command.Command != "ffmpeg" {
		t.Fatalf("expected command result, got %+v", res.Command)
	}
	joined := strings.Join(runner.args, " ")
	for _, fragment := range []string{"-hide_banner -nostdin -i /videos/clip.mp4 -vf subtitles=", "-c:a copy -c:v libx264 -y " + want} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %q", fragment, joined)
		}
	}
}

func TestEmbedUsesConfiguredCodec(t *testing.T) {
	subtitlesDir, outputDir := setupTrack(t, "j")
	runner := &fakeFFmpeg{write: true}
	e := NewEmbedder(subtitlesDir, outputDir, "", WithCommandRunner(runner), WithVideoCodec("libx265"))
	if _, err := e.Embed(context.Background(), "in.mp4", "j", job.DefaultStyleParameters()); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !strings.Contains(strings.Join(runner.args, " "), "-c:v libx265") {
		t.Fatalf("expected libx265 in %v", runner.args)
	}
}

func TestEmbedFailures(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeFFmpeg
	}{
		{"runner error", &fakeFFmpeg{exitCode: 1, err: errors.New("exit status 1")}},
		{"non-zero exit without error", &fakeFFmpeg{exitCode: 187}},
		{"missing output", &fakeFFmpeg{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subtitlesDir, outputDir := setupTrack(t, "j")
			e := NewEmbedder(subtitlesDir, outputDir, "ffmpeg", WithCommandRunner(tc.runner))
			_, err := e.Embed(context.Background(), "in.mp4", "j", job.DefaultStyleParameters())
			if !errors.Is(err, services.ErrEncode) {
				t.Fatalf("expected ErrEncode, got %v", err)
			}
			res, ok := services.CommandOf(err)
			if !ok {
				t.Fatal("expected command result attached")
			}
			if res.StderrTail(1) != "Conversion failed!" {
				t.Fatalf("unexpected stderr tail %q", res.StderrTail(1))
			}
		})
	}
}

func TestEmbedMissingTrack(t *testing.T) {
	e := NewEmbedder(t.TempDir(), t.TempDir(), "ffmpeg", WithCommandRunner(&fakeFFmpeg{}))
	_, err := e.Embed(context.Background(), "in.mp4", "nope", job.DefaultStyleParameters())
	if !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestEmbedRejectsBadColour(t *testing.T) {
	subtitlesDir, outputDir := setupTrack(t, "j")
	style := job.DefaultStyleParameters()
	style.FontColor = "XYZ"
	_, err := NewEmbedder(subtitlesDir, outputDir, "ffmpeg", WithCommandRunner(&fakeFFmpeg{})).Embed(context.Background(), "in.mp4", "j", style)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
