package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subnode/internal/config"
	"subnode/internal/deps"
)

const bytesPerGiB = 1 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeSpaceGiB reports the space available to unprivileged users on the
// filesystem holding path.
func FreeSpaceGiB(path string) (float64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return float64(stat.Bavail) * float64(stat.Bsize) / bytesPerGiB, nil
}

// CheckFreeSpace verifies that at least minGiB is available below path.
// Extracted audio and re-encoded video can be several times the source size.
func CheckFreeSpace(name, path string, minGiB float64) Result {
	free, err := FreeSpaceGiB(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	if free < minGiB {
		return Result{Name: name, Detail: fmt.Sprintf("%.1f GiB free, need %.1f GiB", free, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%.1f GiB free", free)}
}

// CheckTranscriptionService verifies that a Whisper-compatible HTTP service
// answers its model listing and accepts the API key.
func CheckTranscriptionService(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Transcription service"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/v1/models", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckSystemDeps evaluates the external binaries required by cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
