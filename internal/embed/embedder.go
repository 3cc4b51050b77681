package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"subnode/internal/captions"
	"subnode/internal/job"
	"subnode/internal/logging"
	"subnode/internal/services"
)

const lockRetryDelay = 250 * time.Millisecond

// Result describes a finished encode.
type Result struct {
	OutputPath string
	Command    services.CommandResult
}

// Embedder runs ffmpeg to burn captions into a video.
type Embedder struct {
	subtitlesDir string
	outputDir    string
	ffmpegBinary string
	videoCodec   string
	timeout      time.Duration
	runner       services.CommandRunner
	logger       *slog.Logger
}

// Option customizes an Embedder.
type Option func(*Embedder)

// WithCommandRunner overrides how ffmpeg is executed.
func WithCommandRunner(runner services.CommandRunner) Option {
	return func(e *Embedder) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// WithVideoCodec overrides the output video codec.
func WithVideoCodec(codec string) Option {
	return func(e *Embedder) {
		if strings.TrimSpace(codec) != "" {
			e.videoCodec = strings.TrimSpace(codec)
		}
	}
}

// WithTimeout bounds one encode. Zero means no deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Embedder) { e.timeout = timeout }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEmbedder constructs an Embedder reading tracks from subtitlesDir and
// writing videos to outputDir.
func NewEmbedder(subtitlesDir, outputDir, ffmpegBinary string, opts ...Option) *Embedder {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	e := &Embedder{
		subtitlesDir: subtitlesDir,
		outputDir:    outputDir,
		ffmpegBinary: ffmpegBinary,
		videoCodec:   "libx264",
		runner:       services.ExecRunner{},
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "embed")
	return e
}

// OutputPath returns where the captioned video for jobID is written.
func OutputPath(outputDir, jobID string) string {
	return filepath.Join(outputDir, jobID+"_output.mp4")
}

func lockPath(outputPath string) string {
	return filepath.Join(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".lock")
}

// BuildArgs returns the ffmpeg arguments for one encode.
func (e *Embedder) BuildArgs(videoPath, filter, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-i", videoPath,
		"-vf", filter,
		"-c:a", "copy",
		"-c:v", e.videoCodec,
		"-y", outputPath,
	}
}

// Embed burns <subtitles_dir>/<jobID>/<jobID>.vtt into videoPath and writes
// <output_dir>/<jobID>_output.mp4, overwriting any previous output.
func (e *Embedder) Embed(ctx context.Context, videoPath, jobID string, style job.StyleParameters) (Result, error) {
	const stage = services.StageEmbed
	subtitlePath := captions.VTTPath(e.subtitlesDir, jobID)
	if _, err := os.Stat(subtitlePath); err != nil {
		return Result{}, services.Wrap(services.ErrEncode, stage, "locate captions", subtitlePath, err)
	}
	filter, err := SubtitlesFilter(subtitlePath, style)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stage, "build filter", "", err)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrIO, stage, "create output directory", e.outputDir, err)
	}

	outputPath := OutputPath(e.outputDir, jobID)
	lock := flock.New(lockPath(outputPath))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return Result{}, services.Wrap(services.ErrIO, stage, "lock output", outputPath, err)
	}
	defer func() { _ = lock.Unlock() }()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.logger.Info("burning captions",
		logging.String(logging.FieldEventType, "encode_start"),
		logging.String(logging.FieldJobID, jobID),
		logging.String("source", videoPath),
		logging.String("codec", e.videoCodec),
		logging.String("output", outputPath),
	)
	res, err := e.runner.Run(ctx, e.ffmpegBinary, e.BuildArgs(videoPath, filter, outputPath)...)
	if err != nil {
		return Result{Command: res}, services.WrapCommand(services.ErrEncode, stage, "ffmpeg encode", "", res, err)
	}
	if res.ExitCode != 0 {
		return Result{Command: res}, services.WrapCommand(services.ErrEncode, stage, "ffmpeg encode", fmt.Sprintf("exit code %d", res.ExitCode), res, nil)
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		return Result{Command: res}, services.WrapCommand(services.ErrEncode, stage, "verify output", outputPath, res, err)
	}
	if info.Size() == 0 {
		return Result{Command: res}, services.WrapCommand(services.ErrEncode, stage, "verify output", "empty output "+outputPath, res, nil)
	}

	e.logger.Info("captions burned",
		logging.String(logging.FieldEventType, "encode_complete"),
		logging.String(logging.FieldJobID, jobID),
		logging.String("output", outputPath),
		logging.Int64("bytes", info.Size()),
		logging.Duration("elapsed", res.Duration),
	)
	return Result{OutputPath: outputPath, Command: res}, nil
}
