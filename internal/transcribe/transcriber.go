package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"subnode/internal/audio"
	"subnode/internal/captions"
	"subnode/internal/config"
	"subnode/internal/deps"
	"subnode/internal/logging"
	"subnode/internal/services"
)

// Transcriber locates a job's audio and runs it through a Backend.
type Transcriber struct {
	audioDir    string
	backend     Backend
	model       string
	device      string
	timeout     time.Duration
	accelerator func() bool
	logger      *slog.Logger
}

// Option customizes a Transcriber.
type Option func(*Transcriber)

// WithDevice forces "auto", "cuda", or "cpu".
func WithDevice(device string) Option {
	return func(t *Transcriber) { t.device = device }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(t *Transcriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithTimeout bounds each backend call. Zero means no deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Transcriber) { t.timeout = timeout }
}

// WithAcceleratorProbe replaces GPU detection used by the auto device.
func WithAcceleratorProbe(probe func() bool) Option {
	return func(t *Transcriber) {
		if probe != nil {
			t.accelerator = probe
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transcriber) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New builds a Transcriber reading audio from audioDir.
func New(audioDir string, backend Backend, opts ...Option) *Transcriber {
	t := &Transcriber{
		audioDir:    audioDir,
		backend:     backend,
		model:       "large-v2",
		device:      config.DeviceAuto,
		accelerator: deps.HasAccelerator,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.NewComponentLogger(t.logger, "transcribe")
	return t
}

// NewFromConfig selects the backend named by cfg.Transcription.Backend.
// runner and client may be nil to use real subprocesses and HTTP.
func NewFromConfig(cfg *config.Config, runner services.CommandRunner, client HTTPDoer, logger *slog.Logger) (*Transcriber, error) {
	var backend Backend
	switch cfg.Transcription.Backend {
	case config.BackendWhisperX:
		backend = NewWhisperX(WhisperXConfig{
			VADMethod: cfg.Transcription.VADMethod,
			HFToken:   cfg.Transcription.HFToken,
		}, runner)
	case config.BackendHTTP:
		backend = newHTTPWithDoer(HTTPConfig{
			BaseURL: cfg.Transcription.HTTPURL,
			APIKey:  cfg.Transcription.HTTPAPIKey,
			Timeout: cfg.TranscriptionTimeout(),
		}, client)
	default:
		return nil, services.Wrap(services.ErrConfiguration, services.StageTranscribe, "select backend", fmt.Sprintf("unknown backend %q", cfg.Transcription.Backend), nil)
	}
	return New(cfg.Paths.AudioDir, backend,
		WithModel(cfg.Transcription.Model),
		WithDevice(cfg.Transcription.Device),
		WithTimeout(cfg.TranscriptionTimeout()),
		WithLogger(logger),
	), nil
}

// Device resolves the auto setting to cuda or cpu.
func (t *Transcriber) Device() string {
	switch t.device {
	case config.DeviceCUDA, config.DeviceCPU:
		return t.device
	}
	if t.accelerator() {
		return config.DeviceCUDA
	}
	return config.DeviceCPU
}

// Backend returns the configured backend.
func (t *Transcriber) Backend() Backend {
	return t.backend
}

// Transcribe recognizes speech in <audio_dir>/<jobID>/<jobID>.wav. When
// translate is set the model translates into English.
func (t *Transcriber) Transcribe(ctx context.Context, jobID string, translate bool) ([]captions.Segment, error) {
	const stage = services.StageTranscribe
	audioPath := audio.AudioPath(t.audioDir, jobID)
	if _, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrTranscription, stage, "locate audio", audioPath, err)
	}
	if t.backend == nil {
		return nil, services.Wrap(services.ErrTranscription, stage, "select backend", "no backend configured", nil)
	}

	task := TaskTranscribe
	if translate {
		task = TaskTranslate
	}
	req := Request{
		AudioPath: audioPath,
		OutputDir: filepath.Dir(audioPath),
		Model:     t.model,
		Device:    t.Device(),
		Task:      task,
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.logger.Info("transcription started",
		logging.String(logging.FieldEventType, "transcription_start"),
		logging.String(logging.FieldJobID, jobID),
		logging.String("backend", t.backend.Name()),
		logging.String("model", req.Model),
		logging.String("device", req.Device),
		logging.String("task", req.Task),
	)
	started := time.Now()
	raw, err := t.backend.Transcribe(ctx, req)
	if err != nil {
		var cmdErr *commandError
		if errors.As(err, &cmdErr) {
			return nil, services.WrapCommand(services.ErrTranscription, stage, t.backend.Name(), "", cmdErr.result, err)
		}
		return nil, services.Wrap(services.ErrTranscription, stage, t.backend.Name(), "", err)
	}
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrTranscription, stage, t.backend.Name(), "no speech segments returned", nil)
	}

	segments, skipped := toSegments(raw)
	if skipped > 0 {
		logging.WarnWithContext(t.logger, "words without timing skipped", "transcription_words_skipped",
			logging.String(logging.FieldJobID, jobID),
			logging.Int("skipped", skipped),
			logging.String(logging.FieldImpact, "some spoken words will not appear as captions"),
			logging.String(logging.FieldErrorHint, "alignment failed for these words; try a different model or language"),
		)
	}
	t.logger.Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.String(logging.FieldJobID, jobID),
		logging.Int("segments", len(segments)),
		logging.Int("words", captions.WordCount(segments)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return segments, nil
}
