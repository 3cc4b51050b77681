package captions

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subnode/internal/services"
)

func TestFormatterWriteVTT(t *testing.T) {
	dir := t.TempDir()
	f := NewFormatter(dir, Options{})

	files, err := f.Write("clip_1_abcd1234", clipSegments())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	wantPath := filepath.Join(dir, "clip_1_abcd1234", "clip_1_abcd1234.vtt")
	if files.VTTPath != wantPath {
		t.Fatalf("vtt path = %q, want %q", files.VTTPath, wantPath)
	}
	if files.SRTPath != "" {
		t.Fatalf("expected no srt by default, got %q", files.SRTPath)
	}
	if files.Cues != 2 {
		t.Fatalf("expected 2 cues, got %d", files.Cues)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read vtt: %v", err)
	}
	want := "WEBVTT\n\n00:00:00.000 --> 00:00:00.500\nhello\n\n00:00:00.500 --> 00:00:01.000\nworld\n\n"
	if string(data) != want {
		t.Fatalf("unexpected file contents %q", data)
	}
}

func TestFormatterWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f := NewFormatter(dir, Options{})
	first, err := f.Write("job", clipSegments())
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	a, _ := os.ReadFile(first.VTTPath)
	if _, err := f.Write("job", clipSegments()); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, _ := os.ReadFile(first.VTTPath)
	if !bytes.Equal(a, b) {
		t.Fatal("expected byte-identical rewrite")
	}
	entries, _ := os.ReadDir(filepath.Dir(first.VTTPath))
	if len(entries) != 1 {
		t.Fatalf("expected only the vtt file, found %d entries", len(entries))
	}
}

func TestFormatterWritesSRTCompanion(t *testing.T) {
	dir := t.TempDir()
	files, err := NewFormatter(dir, Options{}, WithSRT(true)).Write("job", clipSegments())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if files.SRTPath != filepath.Join(dir, "job", "job.srt") {
		t.Fatalf("unexpected srt path %q", files.SRTPath)
	}
	data, err := os.ReadFile(files.SRTPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	cues, err := ParseSRT(data)
	if err != nil || len(cues) != 2 {
		t.Fatalf("expected 2 srt cues, got %d (%v)", len(cues), err)
	}
}

func TestFormatterEmptySegmentsWriteHeaderOnly(t *testing.T) {
	files, err := NewFormatter(t.TempDir(), Options{}).Write("job", []Segment{{}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(files.VTTPath)
	if string(data) != "WEBVTT\n\n" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestFormatterReportsIOError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	_, err := NewFormatter(blocker, Options{}).Write("job", clipSegments())
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if services.StageOf(err) != services.StageFormat {
		t.Fatalf("expected format stage, got %q", services.StageOf(err))
	}
}
