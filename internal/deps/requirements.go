package deps

import "subnode/internal/config"

// AcceleratorProbe is the binary whose presence signals a CUDA-capable GPU.
const AcceleratorProbe = "nvidia-smi"

// Requirements lists the binaries the configured pipeline needs.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.Encoder.FFmpegBinary, Description: "Extracts audio and burns captions into video"},
		{Name: "FFprobe", Command: cfg.Encoder.FFprobeBinary, Description: "Inspects source media before extraction"},
	}
	if cfg.Transcription.Backend == config.BackendWhisperX {
		reqs = append(reqs, Requirement{Name: "uvx", Command: "uvx", Description: "Runs WhisperX for local transcription"})
	}
	reqs = append(reqs, Requirement{
		Name:        "NVIDIA driver",
		Command:     AcceleratorProbe,
		Description: "Enables CUDA transcription when device is auto",
		Optional:    cfg.Transcription.Device != config.DeviceCUDA,
	})
	return reqs
}

// HasAccelerator reports whether a CUDA-capable GPU appears to be present.
func HasAccelerator() bool {
	_, err := LookPath(AcceleratorProbe)
	return err == nil
}
