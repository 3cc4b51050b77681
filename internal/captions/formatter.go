package captions

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"subnode/internal/logging"
	"subnode/internal/services"
)

// Files lists the caption files written for a job. SRTPath is empty unless
// SRT output is enabled.
type Files struct {
	VTTPath string
	SRTPath string
	Cues    int
}

// Formatter writes caption tracks below a subtitles directory.
type Formatter struct {
	subtitlesDir string
	opts         Options
	writeSRT     bool
	logger       *slog.Logger
}

// FormatterOption customizes a Formatter.
type FormatterOption func(*Formatter)

// WithSRT also writes <id>.srt next to the WebVTT file.
func WithSRT(enabled bool) FormatterOption {
	return func(f *Formatter) { f.writeSRT = enabled }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) FormatterOption {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFormatter constructs a Formatter.
func NewFormatter(subtitlesDir string, opts Options, options ...FormatterOption) *Formatter {
	f := &Formatter{subtitlesDir: subtitlesDir, opts: opts, logger: logging.NewNop()}
	for _, opt := range options {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "captions")
	return f
}

// VTTPath returns where the WebVTT track for jobID lives.
func VTTPath(subtitlesDir, jobID string) string {
	return filepath.Join(subtitlesDir, jobID, jobID+".vtt")
}

// SRTPath returns where the SubRip companion for jobID lives.
func SRTPath(subtitlesDir, jobID string) string {
	return filepath.Join(subtitlesDir, jobID, jobID+".srt")
}

// Write renders segments and writes <subtitles_dir>/<id>/<id>.vtt, replacing
// any previous file. Identical input produces byte-identical output.
func (f *Formatter) Write(jobID string, segments []Segment) (Files, error) {
	const stage = services.StageFormat
	dir := filepath.Join(f.subtitlesDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, services.Wrap(services.ErrIO, stage, "create subtitles directory", dir, err)
	}

	cues := Cues(segments, f.opts)
	files := Files{VTTPath: VTTPath(f.subtitlesDir, jobID), Cues: len(cues)}
	if err := writeFileAtomic(files.VTTPath, FormatVTT(cues), 0o644); err != nil {
		return Files{}, services.Wrap(services.ErrIO, stage, "write vtt", files.VTTPath, err)
	}
	if f.writeSRT {
		files.SRTPath = SRTPath(f.subtitlesDir, jobID)
		if err := writeFileAtomic(files.SRTPath, FormatSRT(cues), 0o644); err != nil {
			return Files{}, services.Wrap(services.ErrIO, stage, "write srt", files.SRTPath, err)
		}
	}

	f.logger.Info("captions written",
		logging.String(logging.FieldEventType, "captions_written"),
		logging.String(logging.FieldJobID, jobID),
		logging.Int("cues", len(cues)),
		logging.String("vtt_path", files.VTTPath),
		logging.Bool("srt", f.writeSRT),
	)
	return files, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".captions-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
