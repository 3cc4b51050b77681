package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeEncoder()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.audio_dir", &c.Paths.AudioDir, defaultAudioDir},
		{"paths.subtitles_dir", &c.Paths.SubtitlesDir, defaultSubtitlesDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Backend = strings.ToLower(strings.TrimSpace(c.Transcription.Backend))
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = BackendWhisperX
	}
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	if c.Transcription.Device == "" {
		c.Transcription.Device = DeviceAuto
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.HTTPURL = strings.TrimRight(strings.TrimSpace(c.Transcription.HTTPURL), "/")
	if c.Transcription.HTTPURL == "" {
		c.Transcription.HTTPURL = defaultHTTPURL
	}

	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		}
	}
	c.Transcription.HTTPAPIKey = strings.TrimSpace(c.Transcription.HTTPAPIKey)
	if c.Transcription.HTTPAPIKey == "" {
		if value, ok := os.LookupEnv("SUBNODE_WHISPER_API_KEY"); ok {
			c.Transcription.HTTPAPIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		c.Encoder.FFprobeBinary = defaultFFprobeBinary
	}
	c.Encoder.VideoCodec = strings.TrimSpace(c.Encoder.VideoCodec)
	if c.Encoder.VideoCodec == "" {
		c.Encoder.VideoCodec = defaultVideoCodec
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
