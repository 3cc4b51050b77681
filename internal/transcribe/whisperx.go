package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"subnode/internal/services"
)

// WhisperX invocation constants.
const (
	UVXCommand        = "uvx"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	BeamSize          = "5"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
	DeviceCUDA        = "cuda"
	DeviceCPU         = "cpu"
)

// WhisperXConfig captures runtime settings for the WhisperX backend.
type WhisperXConfig struct {
	// VADMethod selects voice activity detection ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token required by pyannote VAD.
	HFToken string
}

// WhisperX runs WhisperX through uvx and reads its JSON output.
type WhisperX struct {
	cfg    WhisperXConfig
	runner services.CommandRunner
}

// torchWeightsEnv is forced for uvx runs. Torch 2.6 changed torch.load to
// weights_only=true, which breaks pyannote checkpoints loaded by WhisperX.
const torchWeightsEnv = "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD"

// NewWhisperX creates a WhisperX backend. A nil runner executes uvx directly.
// Subprocess runners get TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1 unless the
// environment already sets it.
func NewWhisperX(cfg WhisperXConfig, runner services.CommandRunner) *WhisperX {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	if execRunner, ok := runner.(services.ExecRunner); ok {
		runner = withTorchEnv(execRunner)
	}
	return &WhisperX{cfg: cfg, runner: runner}
}

func withTorchEnv(r services.ExecRunner) services.ExecRunner {
	if _, set := os.LookupEnv(torchWeightsEnv); set {
		return r
	}
	for _, kv := range r.Env {
		if strings.HasPrefix(kv, torchWeightsEnv+"=") {
			return r
		}
	}
	r.Env = append(append([]string(nil), r.Env...), torchWeightsEnv+"=1")
	return r
}

// Name identifies the backend in logs.
func (w *WhisperX) Name() string { return "whisperx" }

// Transcribe runs WhisperX and decodes <output_dir>/<audio base>.json.
func (w *WhisperX) Transcribe(ctx context.Context, req Request) ([]RawSegment, error) {
	if req.AudioPath == "" {
		return nil, fmt.Errorf("whisperx: audio path required")
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(req.AudioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("whisperx: ensure output dir: %w", err)
	}

	res, err := w.runner.Run(ctx, UVXCommand, w.buildArgs(req, outputDir)...)
	if err != nil {
		return nil, &commandError{result: res, err: fmt.Errorf("whisperx: %w", err)}
	}

	jsonPath := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))+".json")
	segments, err := LoadWhisperXSegments(jsonPath)
	if err != nil {
		return nil, &commandError{result: res, err: err}
	}
	return segments, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (w *WhisperX) buildArgs(req Request, outputDir string) []string {
	args := make([]string, 0, 32)
	cuda := req.Device == DeviceCUDA

	if cuda {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	task := req.Task
	if task == "" {
		task = TaskTranscribe
	}

	args = append(args,
		"whisperx",
		req.AudioPath,
		"--model", req.Model,
		"--task", task,
		"--batch_size", BatchSize,
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
		"--output_dir", outputDir,
		"--output_format", "json",
	)

	vadMethod := w.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && w.cfg.HFToken != "" {
		args = append(args, "--hf_token", w.cfg.HFToken)
	}

	if cuda {
		args = append(args, "--device", DeviceCUDA)
	} else {
		args = append(args, "--device", DeviceCPU, "--compute_type", CPUComputeType)
	}
	return args
}

type whisperXPayload struct {
	Segments []RawSegment `json:"segments"`
}

// LoadWhisperXSegments reads segments from a WhisperX JSON file.
func LoadWhisperXSegments(jsonPath string) ([]RawSegment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisperx json: %w", err)
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// commandError keeps the subprocess outcome next to the failure.
type commandError struct {
	result services.CommandResult
	err    error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }
