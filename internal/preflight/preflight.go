package preflight

import (
	"context"
	"fmt"
	"strings"

	"subnode/internal/config"
	"subnode/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that gate processing for cfg. Binary
// availability is reported separately by CheckSystemDeps.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, dir := range namedDirectories(cfg) {
		results = append(results, CheckDirectoryAccess(dir.name, dir.path))
	}
	if cfg.Preflight.MinFreeSpaceGiB > 0 {
		results = append(results,
			CheckFreeSpace("Audio free space", cfg.Paths.AudioDir, float64(cfg.Preflight.MinFreeSpaceGiB)),
			CheckFreeSpace("Output free space", cfg.Paths.OutputDir, float64(cfg.Preflight.MinFreeSpaceGiB)),
		)
	}
	if cfg.Transcription.Backend == config.BackendHTTP {
		results = append(results, CheckTranscriptionService(ctx, cfg.Transcription.HTTPURL, cfg.Transcription.HTTPAPIKey))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err summarizes failed checks as a configuration error, or nil when all passed.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "", "preflight", strings.Join(parts, "; "), nil)
}

type namedDirectory struct {
	name string
	path string
}

func namedDirectories(cfg *config.Config) []namedDirectory {
	return []namedDirectory{
		{name: "Audio directory", path: cfg.Paths.AudioDir},
		{name: "Subtitles directory", path: cfg.Paths.SubtitlesDir},
		{name: "Output directory", path: cfg.Paths.OutputDir},
		{name: "State directory", path: cfg.Paths.StateDir},
	}
}
