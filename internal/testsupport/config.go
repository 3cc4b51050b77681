package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subnode/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Transcription runs on the CPU so results never depend on the host GPU.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Paths.SubtitlesDir = filepath.Join(base, "subtitles")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Transcription.Device = config.DeviceCPU
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHistory toggles the job ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithBackend selects the transcription backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.Backend = backend
	}
}

// WithSRT enables the SRT companion file.
func WithSRT() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Captions.WriteSRT = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// points PATH at them. If names is empty, the default external binaries are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "uvx"}
		}
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), names...)
	}
}

// StubBinaries writes executables that exit 0 into dir and makes dir the
// only PATH entry for the rest of the test.
func StubBinaries(t testing.TB, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	script := []byte("#!/bin/sh\nexit 0\n")
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, script, 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
