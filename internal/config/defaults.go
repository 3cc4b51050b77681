package config

const (
	defaultAudioDir        = "~/.local/share/subnode/audio"
	defaultSubtitlesDir    = "~/.local/share/subnode/subtitles"
	defaultOutputDir       = "~/.local/share/subnode/output"
	defaultStateDir        = "~/.local/state/subnode"
	defaultModel           = "large-v2"
	defaultVADMethod       = "silero"
	defaultHTTPURL         = "http://127.0.0.1:8000"
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultVideoCodec      = "libx264"
	defaultServerBind      = "127.0.0.1:8188"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultMinFreeSpaceGiB = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AudioDir:     defaultAudioDir,
			SubtitlesDir: defaultSubtitlesDir,
			OutputDir:    defaultOutputDir,
			StateDir:     defaultStateDir,
		},
		Transcription: Transcription{
			Backend:   BackendWhisperX,
			Model:     defaultModel,
			Device:    DeviceAuto,
			VADMethod: defaultVADMethod,
			HTTPURL:   defaultHTTPURL,
		},
		Encoder: Encoder{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
		},
		History: History{
			Enabled: true,
		},
		Preflight: Preflight{
			MinFreeSpaceGiB: defaultMinFreeSpaceGiB,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
