package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"subnode/internal/config"
	"subnode/internal/deps"
)

// AcceleratorProbe reports the GPU snapshot used to resolve device "auto".
type AcceleratorProbe struct {
	Detected bool
	Name     string
	Driver   string
}

// ProbeAccelerator asks nvidia-smi for the first GPU's name and driver.
func ProbeAccelerator() AcceleratorProbe {
	if !deps.HasAccelerator() {
		return AcceleratorProbe{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, deps.AcceleratorProbe, "--query-gpu=name,driver_version", "--format=csv,noheader")
	output, err := cmd.Output()
	if err != nil {
		return AcceleratorProbe{}
	}
	return parseAcceleratorOutput(string(output))
}

func parseAcceleratorOutput(output string) AcceleratorProbe {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return AcceleratorProbe{}
	}
	name, driver, _ := strings.Cut(line, ",")
	return AcceleratorProbe{
		Detected: true,
		Name:     strings.TrimSpace(name),
		Driver:   strings.TrimSpace(driver),
	}
}

// Detail renders a display-friendly summary for status output.
func (p AcceleratorProbe) Detail() string {
	if !p.Detected {
		return "No CUDA GPU detected"
	}
	if p.Driver == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (driver %s)", p.Name, p.Driver)
}

// ResolvedDevice reports which device transcription will use under cfg.
func ResolvedDevice(cfg *config.Config, probe AcceleratorProbe) string {
	switch cfg.Transcription.Device {
	case config.DeviceCUDA, config.DeviceCPU:
		return cfg.Transcription.Device
	}
	if probe.Detected {
		return config.DeviceCUDA
	}
	return config.DeviceCPU
}
