package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subnode/internal/config"
	"subnode/internal/deps"
	"subnode/internal/hostapi"
	"subnode/internal/job"
	"subnode/internal/preflight"
	"subnode/internal/services"
)

type runOutput struct {
	JobID      string `json:"job_id"`
	OutputPath string `json:"output_path"`
	VTTPath    string `json:"vtt_path"`
	SRTPath    string `json:"srt_path,omitempty"`
	Cues       int    `json:"cues"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	style := job.DefaultStyleParameters()
	var asJSON bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Caption a video and write the burned-in copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !skipPreflight {
				if err := checkReady(cmd, cfg); err != nil {
					return err
				}
			}

			p, _, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.Process(cmd.Context(), strings.TrimSpace(args[0]), style)
			if err != nil {
				body := hostapi.NewErrorBody(err)
				if asJSON {
					_ = writeJSON(cmd, hostapi.ErrorResponse{Error: body})
				} else {
					printFailure(cmd.ErrOrStderr(), body)
				}
				return err
			}

			if asJSON {
				return writeJSON(cmd, runOutput{
					JobID:      result.JobID,
					OutputPath: result.OutputPath,
					VTTPath:    result.VTTPath,
					SRTPath:    result.SRTPath,
					Cues:       result.Cues,
					ElapsedMS:  result.Elapsed.Milliseconds(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s finished in %s\n", result.JobID, result.Elapsed.Round(time.Millisecond))
			fmt.Fprintf(out, "  Captions: %s (%d cues)\n", result.VTTPath, result.Cues)
			if result.SRTPath != "" {
				fmt.Fprintf(out, "  SRT:      %s\n", result.SRTPath)
			}
			fmt.Fprintf(out, "  Output:   %s\n", result.OutputPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&style.FontName, "font-name", style.FontName, "Caption font family")
	flags.Float64Var(&style.FontSize, "font-size", style.FontSize, "Caption font size")
	flags.StringVar(&style.FontColor, "font-color", style.FontColor, "Caption colour as RRGGBB")
	flags.StringVar(&style.Position, "position", style.Position, "Caption placement (bottom, middle, top)")
	flags.StringVar(&style.Style, "style", style.Style, "Caption treatment (normal, bold, italic, boxed)")
	flags.BoolVar(&style.TranslateToEnglish, "translate", false, "Translate speech to English captions")
	flags.BoolVar(&asJSON, "json", false, "Print the result as JSON")
	flags.BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory, disk and binary checks")
	return cmd
}

// checkReady fails fast when required binaries or directories are unusable.
func checkReady(cmd *cobra.Command, cfg *config.Config) error {
	if missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "", "preflight", "missing required binaries: "+strings.Join(missing, ", "), nil)
	}
	return preflight.Err(preflight.RunAll(cmd.Context(), cfg))
}

// printFailure summarizes where a job stopped. The error itself is printed by main.
func printFailure(w io.Writer, body hostapi.ErrorBody) {
	if body.Stage == "" {
		return
	}
	fmt.Fprintf(w, "Job failed during %s (%s)\n", body.Stage, body.Kind)
	if body.ExitCode != nil {
		fmt.Fprintf(w, "  exit code: %d\n", *body.ExitCode)
	}
	if body.StderrTail != "" {
		fmt.Fprintf(w, "  stderr:    %s\n", body.StderrTail)
	}
}
