package pipeline

import (
	"fmt"
	"log/slog"

	"subnode/internal/audio"
	"subnode/internal/captions"
	"subnode/internal/config"
	"subnode/internal/embed"
	"subnode/internal/history"
	"subnode/internal/services"
	"subnode/internal/transcribe"
)

// Dependencies lets callers substitute the external tools. Zero values use
// real subprocesses and HTTP.
type Dependencies struct {
	Runner     services.CommandRunner
	HTTPClient transcribe.HTTPDoer
	Logger     *slog.Logger
}

// NewFromConfig wires the stages from cfg. When history is enabled the ledger
// is opened and must be released with Close.
func NewFromConfig(cfg *config.Config, deps Dependencies) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "build pipeline", "config is nil", nil)
	}
	runner := deps.Runner
	if runner == nil {
		runner = services.ExecRunner{}
	}

	transcriber, err := transcribe.NewFromConfig(cfg, runner, deps.HTTPClient, deps.Logger)
	if err != nil {
		return nil, err
	}

	stages := Stages{
		Extractor: audio.NewExtractor(cfg.Paths.AudioDir, cfg.Encoder.FFmpegBinary, cfg.Encoder.FFprobeBinary,
			audio.WithCommandRunner(runner),
			audio.WithLogger(deps.Logger),
		),
		Transcriber: transcriber,
		Formatter: captions.NewFormatter(cfg.Paths.SubtitlesDir,
			captions.Options{
				StripLeadingChar: cfg.Captions.StripLeadingChar,
				Uppercase:        cfg.Captions.Uppercase,
			},
			captions.WithSRT(cfg.Captions.WriteSRT),
			captions.WithLogger(deps.Logger),
		),
		Embedder: embed.NewEmbedder(cfg.Paths.SubtitlesDir, cfg.Paths.OutputDir, cfg.Encoder.FFmpegBinary,
			embed.WithCommandRunner(runner),
			embed.WithVideoCodec(cfg.Encoder.VideoCodec),
			embed.WithTimeout(cfg.EncoderTimeout()),
			embed.WithLogger(deps.Logger),
		),
	}

	opts := []Option{WithLogger(deps.Logger)}
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("open job history: %w", err)
		}
		opts = append(opts, WithRecorder(store))
	}

	p := New(stages, opts...)
	if store != nil {
		p.closers = append(p.closers, store)
	}
	return p, nil
}
