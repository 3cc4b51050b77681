package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subnode/internal/config"
	"subnode/internal/logging"
	"subnode/internal/pipeline"
	"subnode/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	tools      *testsupport.FakeTools
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Preflight.MinFreeSpaceGiB = 0
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		tools:      testsupport.NewFakeTools(),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *cliTestEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.deps = pipeline.Dependencies{Runner: e.tools, Logger: logging.NewNop()}
	return runCLI(t, ctx, strings.NewReader(stdin), append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, ctx *commandContext, stdin io.Reader, args []string) (string, string, error) {
	t.Helper()
	cmd := buildRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetIn(stdin)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
