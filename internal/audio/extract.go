package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subnode/internal/job"
	"subnode/internal/logging"
	"subnode/internal/media/ffprobe"
	"subnode/internal/services"
)

// Extraction describes the audio produced for one job.
type Extraction struct {
	JobID     string
	AudioPath string
	Probe     ffprobe.Result
}

// Extractor pulls a transcription-ready audio track from a video.
type Extractor struct {
	audioDir     string
	ffmpegBinary string
	prober       *ffprobe.Prober
	runner       services.CommandRunner
	logger       *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithCommandRunner overrides how ffmpeg and ffprobe are executed.
func WithCommandRunner(runner services.CommandRunner) Option {
	return func(e *Extractor) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// WithProber overrides the ffprobe wrapper.
func WithProber(prober *ffprobe.Prober) Option {
	return func(e *Extractor) {
		if prober != nil {
			e.prober = prober
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor builds an extractor writing below audioDir.
func NewExtractor(audioDir, ffmpegBinary, ffprobeBinary string, opts ...Option) *Extractor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	e := &Extractor{
		audioDir:     audioDir,
		ffmpegBinary: ffmpegBinary,
		runner:       services.ExecRunner{},
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prober == nil {
		e.prober = ffprobe.New(ffprobeBinary, ffprobe.WithCommandRunner(e.runner))
	}
	e.logger = logging.NewComponentLogger(e.logger, "audio")
	return e
}

// AudioPath returns where the WAV for jobID lives.
func AudioPath(audioDir, jobID string) string {
	return filepath.Join(audioDir, jobID, jobID+".wav")
}

// Extract generates a job identifier from the source name and extracts its audio.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (Extraction, error) {
	return e.ExtractJob(ctx, job.NewID(videoPath), videoPath)
}

// ExtractJob extracts audio for a job whose identifier is already known.
// Nothing is written below the audio directory unless the source is a
// readable file with at least one audio stream.
func (e *Extractor) ExtractJob(ctx context.Context, jobID, videoPath string) (Extraction, error) {
	const stage = services.StageExtract
	if !job.ValidID(jobID) {
		return Extraction{}, services.Wrap(services.ErrValidation, stage, "check job id", fmt.Sprintf("invalid job id %q", jobID), nil)
	}
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return Extraction{}, services.Wrap(services.ErrMediaRead, stage, "open source", "video path is empty", nil)
	}
	if err := checkReadable(videoPath); err != nil {
		return Extraction{}, services.Wrap(services.ErrMediaRead, stage, "open source", videoPath, err)
	}

	probe, probeRes, err := e.prober.Inspect(ctx, videoPath)
	if err != nil {
		return Extraction{}, services.WrapCommand(services.ErrMediaRead, stage, "probe source", videoPath, probeRes, err)
	}
	track, ok := probe.PrimaryAudio()
	if !ok {
		return Extraction{}, services.Wrap(services.ErrMediaRead, stage, "probe source", "no audio streams in "+videoPath, nil)
	}

	jobDir := filepath.Join(e.audioDir, jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return Extraction{}, services.Wrap(services.ErrIO, stage, "create audio directory", jobDir, err)
	}
	dest := AudioPath(e.audioDir, jobID)

	e.logger.Debug("extracting audio",
		logging.String(logging.FieldEventType, "audio_extract_start"),
		logging.String(logging.FieldJobID, jobID),
		logging.String("source", videoPath),
		logging.Float64("duration_seconds", probe.DurationSeconds()),
		logging.String("audio_codec", track.CodecName),
		logging.Int("audio_channels", track.Channels),
	)
	res, err := e.runner.Run(ctx, e.ffmpegBinary, BuildExtractArgs(videoPath, dest)...)
	if err != nil {
		return Extraction{}, services.WrapCommand(services.ErrMediaRead, stage, "ffmpeg extract", videoPath, res, err)
	}
	if _, err := os.Stat(dest); err != nil {
		return Extraction{}, services.WrapCommand(services.ErrMediaRead, stage, "ffmpeg extract", "no audio written to "+dest, res, err)
	}

	e.logger.Info("audio extracted",
		logging.String(logging.FieldEventType, "audio_extract_complete"),
		logging.String(logging.FieldJobID, jobID),
		logging.String("audio_path", dest),
		logging.Duration("elapsed", res.Duration),
	)
	return Extraction{JobID: jobID, AudioPath: dest, Probe: probe}, nil
}

// BuildExtractArgs returns the ffmpeg arguments producing mono 16 kHz PCM.
func BuildExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
