package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"subnode/internal/audio"
	"subnode/internal/captions"
	"subnode/internal/embed"
	"subnode/internal/history"
	"subnode/internal/job"
	"subnode/internal/logging"
	"subnode/internal/services"
)

// Extractor produces the job's audio track.
type Extractor interface {
	ExtractJob(ctx context.Context, jobID, videoPath string) (audio.Extraction, error)
}

// Transcriber turns the job's audio track into timed words.
type Transcriber interface {
	Transcribe(ctx context.Context, jobID string, translate bool) ([]captions.Segment, error)
}

// Formatter writes the caption track.
type Formatter interface {
	Write(jobID string, segments []captions.Segment) (captions.Files, error)
}

// Embedder burns the caption track into the video.
type Embedder interface {
	Embed(ctx context.Context, videoPath, jobID string, style job.StyleParameters) (embed.Result, error)
}

// Recorder persists job progress. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, j job.Job) (*history.Record, error)
	UpdateStage(ctx context.Context, id, stage string) error
	Complete(ctx context.Context, id string, artifacts history.Artifacts) error
	Fail(ctx context.Context, id string, cause error) error
}

// Stages bundles the four stage implementations.
type Stages struct {
	Extractor   Extractor
	Transcriber Transcriber
	Formatter   Formatter
	Embedder    Embedder
}

// Result describes a finished job.
type Result struct {
	JobID      string
	AudioPath  string
	VTTPath    string
	SRTPath    string
	OutputPath string
	Cues       int
	Encode     services.CommandResult
	Elapsed    time.Duration
}

// Pipeline orchestrates one job at a time through the stages.
type Pipeline struct {
	stages   Stages
	recorder Recorder
	logger   *slog.Logger
	closers  []io.Closer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRecorder persists job progress to recorder.
func WithRecorder(recorder Recorder) Option {
	return func(p *Pipeline) { p.recorder = recorder }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New constructs a Pipeline over the supplied stages.
func New(stages Stages, opts ...Option) *Pipeline {
	p := &Pipeline{stages: stages, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p
}

// Close releases resources opened by NewFromConfig.
func (p *Pipeline) Close() error {
	if p == nil {
		return nil
	}
	var firstErr error
	for _, closer := range p.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

// Process builds a job for videoPath and runs it.
func (p *Pipeline) Process(ctx context.Context, videoPath string, style job.StyleParameters) (Result, error) {
	return p.Run(ctx, job.New(videoPath, style))
}

// Run executes extract, transcribe, format and embed for j.
func (p *Pipeline) Run(ctx context.Context, j job.Job) (Result, error) {
	started := time.Now()
	result := Result{JobID: j.ID}

	ctx = logging.WithJobID(ctx, j.ID)
	logger := logging.WithContext(ctx, p.logger)

	if err := j.Style.Validate(); err != nil {
		stageErr := newStageError(StageValidate, err)
		logger.Error("job rejected",
			logging.String(logging.FieldEventType, "job_rejected"),
			logging.String(logging.FieldErrorKind, stageErr.Kind),
			logging.Error(err),
		)
		return result, stageErr
	}

	p.begin(ctx, logger, j)
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("source_file", j.SourcePath),
		logging.Bool("translate", j.Style.TranslateToEnglish),
	)

	var extraction audio.Extraction
	if err := p.runStage(ctx, j.ID, services.StageExtract, func(stageCtx context.Context) error {
		var err error
		extraction, err = p.stages.Extractor.ExtractJob(stageCtx, j.ID, j.SourcePath)
		return err
	}); err != nil {
		return result, err
	}
	result.AudioPath = extraction.AudioPath

	var segments []captions.Segment
	if err := p.runStage(ctx, j.ID, services.StageTranscribe, func(stageCtx context.Context) error {
		var err error
		segments, err = p.stages.Transcriber.Transcribe(stageCtx, j.ID, j.Style.TranslateToEnglish)
		return err
	}); err != nil {
		return result, err
	}

	if err := p.runStage(ctx, j.ID, services.StageFormat, func(context.Context) error {
		files, err := p.stages.Formatter.Write(j.ID, segments)
		result.VTTPath = files.VTTPath
		result.SRTPath = files.SRTPath
		result.Cues = files.Cues
		return err
	}); err != nil {
		return result, err
	}

	if err := p.runStage(ctx, j.ID, services.StageEmbed, func(stageCtx context.Context) error {
		encoded, err := p.stages.Embedder.Embed(stageCtx, j.SourcePath, j.ID, j.Style)
		result.OutputPath = encoded.OutputPath
		result.Encode = encoded.Command
		return err
	}); err != nil {
		return result, err
	}

	result.Elapsed = time.Since(started)
	if p.recorder != nil {
		if err := p.recorder.Complete(ctx, j.ID, history.Artifacts{
			AudioPath:  result.AudioPath,
			VTTPath:    result.VTTPath,
			SRTPath:    result.SRTPath,
			OutputPath: result.OutputPath,
		}); err != nil {
			p.warnHistory(logger, "record completion", err)
		}
	}
	logger.Info("job complete",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("output", result.OutputPath),
		logging.Int("cues", result.Cues),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (p *Pipeline) begin(ctx context.Context, logger *slog.Logger, j job.Job) {
	if p.recorder == nil {
		return
	}
	if _, err := p.recorder.Begin(ctx, j); err != nil {
		p.warnHistory(logger, "record job start", err)
	}
}

// runStage wraps one stage with logging, history updates and error tagging.
func (p *Pipeline) runStage(ctx context.Context, jobID, stage string, fn func(context.Context) error) error {
	stageCtx := logging.WithStage(ctx, stage)
	logger := logging.WithContext(stageCtx, p.logger)

	if err := ctx.Err(); err != nil {
		return p.fail(stageCtx, logger, jobID, stage, err)
	}
	if p.recorder != nil {
		if err := p.recorder.UpdateStage(stageCtx, jobID, stage); err != nil {
			p.warnHistory(logger, "record stage", err)
		}
	}

	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()
	if err := fn(stageCtx); err != nil {
		return p.fail(stageCtx, logger, jobID, stage, err)
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, jobID, stage string, err error) error {
	stageErr := newStageError(stage, err)
	attrs := append(logging.Failure(err), logging.Alert("stage_failure"))
	logging.ErrorWithContext(logger, "stage failed", "stage_failure", attrs...)

	if p.recorder != nil {
		// The caller's context may already be cancelled; the failure is still recorded.
		if recErr := p.recorder.Fail(context.WithoutCancel(ctx), jobID, stageErr); recErr != nil {
			p.warnHistory(logger, "record failure", recErr)
		}
	}
	return stageErr
}

func (p *Pipeline) warnHistory(logger *slog.Logger, operation string, err error) {
	logging.WarnWithContext(logger, "job history update failed", "history_write_failed",
		logging.String("operation", operation),
		logging.Error(err),
		logging.String(logging.FieldImpact, "job history may be incomplete; the job itself is unaffected"),
		logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
	)
}
