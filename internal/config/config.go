package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Transcription backends.
const (
	BackendWhisperX = "whisperx"
	BackendHTTP     = "http"
)

// Transcription devices.
const (
	DeviceAuto = "auto"
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

// Paths contains the artifact directories. Every job owns a subtree below
// each of them.
type Paths struct {
	AudioDir     string `toml:"audio_dir"`
	SubtitlesDir string `toml:"subtitles_dir"`
	OutputDir    string `toml:"output_dir"`
	StateDir     string `toml:"state_dir"`
}

// Transcription selects and configures the speech recognition backend.
type Transcription struct {
	Backend        string `toml:"backend"`
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	VADMethod      string `toml:"vad_method"`
	HFToken        string `toml:"hf_token"`
	HTTPURL        string `toml:"http_url"`
	HTTPAPIKey     string `toml:"http_api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Encoder contains ffmpeg/ffprobe settings used by extraction and embedding.
type Encoder struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	VideoCodec     string `toml:"video_codec"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Captions contains caption text handling switches.
type Captions struct {
	WriteSRT         bool `toml:"write_srt"`
	StripLeadingChar bool `toml:"strip_leading_char"`
	Uppercase        bool `toml:"uppercase"`
}

// History controls the SQLite job ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Preflight contains thresholds for environment checks.
type Preflight struct {
	MinFreeSpaceGiB int `toml:"min_free_gib"`
}

// Server contains the HTTP host adapter bind address.
type Server struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subnode.
//
// Configuration sections by subsystem:
//   - Paths: artifact and state directories
//   - Transcription: whisperx subprocess or HTTP service
//   - Encoder: ffmpeg and ffprobe invocation
//   - Captions: caption text switches and SRT companion output
//   - History: job ledger
//   - Preflight: free space threshold
//   - Server: HTTP host adapter
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Encoder       Encoder       `toml:"encoder"`
	Captions      Captions      `toml:"captions"`
	History       History       `toml:"history"`
	Preflight     Preflight     `toml:"preflight"`
	Server        Server        `toml:"server"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subnode/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subnode.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the artifact and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range c.Directories() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Directories lists the configured directories in a stable order.
func (c *Config) Directories() []string {
	return []string{c.Paths.AudioDir, c.Paths.SubtitlesDir, c.Paths.OutputDir, c.Paths.StateDir}
}

// HistoryPath returns the location of the job ledger database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// TranscriptionTimeout returns the configured transcription deadline, or zero
// when transcription may run unbounded.
func (c *Config) TranscriptionTimeout() time.Duration {
	return secondsToDuration(c.Transcription.TimeoutSeconds)
}

// EncoderTimeout returns the configured deadline for one ffmpeg invocation.
func (c *Config) EncoderTimeout() time.Duration {
	return secondsToDuration(c.Encoder.TimeoutSeconds)
}

func secondsToDuration(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	redacted := *c
	if redacted.Transcription.HFToken != "" {
		redacted.Transcription.HFToken = "<redacted>"
	}
	if redacted.Transcription.HTTPAPIKey != "" {
		redacted.Transcription.HTTPAPIKey = "<redacted>"
	}
	data, err := toml.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
