package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExecRunnerCapturesExitCodeAndStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "fail.sh")
	body := "#!/bin/sh\necho progress\necho 'first problem' >&2\necho 'fatal problem' >&2\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := ExecRunner{}.Run(context.Background(), script, "-x")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", result.ExitCode)
	}
	if result.Stdout != "progress\n" {
		t.Fatalf("stdout = %q", result.Stdout)
	}
	if got := result.StderrTail(1); got != "fatal problem" {
		t.Fatalf("stderr tail = %q", got)
	}
	if got := result.StderrTail(5); got != "first problem | fatal problem" {
		t.Fatalf("stderr tail(5) = %q", got)
	}
	if len(result.Args) != 1 || result.Args[0] != "-x" {
		t.Fatalf("args = %v", result.Args)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	result, err := ExecRunner{}.Run(context.Background(), "clearly-not-present-binary")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if result.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", result.ExitCode)
	}
}

func TestExecRunnerMergesEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "env.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s' \"$SUBNODE_PROBE\"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	result, err := ExecRunner{Env: []string{"SUBNODE_PROBE=ok"}}.Run(context.Background(), script)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stdout != "ok" {
		t.Fatalf("stdout = %q, want ok", result.Stdout)
	}
}
