package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validatePreflight(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.AudioDir == "" {
		return errors.New("paths.audio_dir must be set")
	}
	if c.Paths.SubtitlesDir == "" {
		return errors.New("paths.subtitles_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case BackendWhisperX:
	case BackendHTTP:
		parsed, err := url.Parse(c.Transcription.HTTPURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("transcription.http_url must be an absolute URL when backend is http, got %q", c.Transcription.HTTPURL)
		}
	default:
		return fmt.Errorf("transcription.backend must be %q or %q, got %q", BackendWhisperX, BackendHTTP, c.Transcription.Backend)
	}
	switch c.Transcription.Device {
	case DeviceAuto, DeviceCUDA, DeviceCPU:
	default:
		return fmt.Errorf("transcription.device must be auto, cuda, or cpu, got %q", c.Transcription.Device)
	}
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.TimeoutSeconds < 0 {
		return errors.New("transcription.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.TimeoutSeconds < 0 {
		return errors.New("encoder.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.MinFreeSpaceGiB < 0 {
		return errors.New("preflight.min_free_gib must be >= 0")
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port, got %q", c.Server.Bind)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
