package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subnode/internal/config"
	"subnode/internal/preflight"
	"subnode/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report binaries, directories and transcription readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := 0

			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			for _, status := range preflight.CheckSystemDeps(cfg) {
				detail := status.Path
				if !status.Available {
					detail = status.Detail
					if !status.Optional {
						failed++
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, checkStatus(status.Available, status.Optional), detail, colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				if !result.Passed {
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, checkStatus(result.Passed, false), result.Detail, colorize))
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Transcription", colorize))
			fmt.Fprintln(out, renderStatusLine("Backend", statusInfo, describeBackend(cfg), colorize))
			if cfg.Transcription.Backend == config.BackendWhisperX {
				probe := preflight.ProbeAccelerator()
				fmt.Fprintln(out, renderStatusLine("GPU", checkStatus(probe.Detected, true), probe.Detail(), colorize))
				device := preflight.ResolvedDevice(cfg, probe)
				kind := statusInfo
				if device == config.DeviceCUDA && !probe.Detected {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine("Device", kind, fmt.Sprintf("%s (configured %s)", device, cfg.Transcription.Device), colorize))
			}

			if failed > 0 {
				return services.Wrap(services.ErrConfiguration, "", "check", fmt.Sprintf("%d check(s) failed", failed), nil)
			}
			return nil
		},
	}
}

func describeBackend(cfg *config.Config) string {
	t := cfg.Transcription
	switch t.Backend {
	case config.BackendHTTP:
		return fmt.Sprintf("http %s (model %s)", strings.TrimRight(t.HTTPURL, "/"), t.Model)
	default:
		return fmt.Sprintf("whisperx via uvx (model %s, vad %s, diarization token %s)", t.Model, t.VADMethod, yesNo(t.HFToken != ""))
	}
}

