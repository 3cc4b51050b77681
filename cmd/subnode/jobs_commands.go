package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subnode/internal/audio"
	"subnode/internal/captions"
	"subnode/internal/embed"
	"subnode/internal/history"
	"subnode/internal/hostapi"
	"subnode/internal/job"
	"subnode/internal/services"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the job history and clean job artifacts",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsCleanCommand(ctx))
	return jobsCmd
}

// withHistory opens the job ledger for the duration of fn.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return services.Wrap(services.ErrConfiguration, "", "open history", "job history is disabled (history.enabled = false)", nil)
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFilters []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFilters)
			if err != nil {
				return err
			}
			return ctx.withHistory(func(store *history.Store) error {
				records, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					views := make([]hostapi.JobView, 0, len(records))
					for _, record := range records {
						views = append(views, hostapi.NewJobView(record))
					}
					return writeJSON(cmd, hostapi.JobListResponse{Jobs: views})
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						record.ID,
						string(record.Status),
						record.Stage,
						record.CreatedAt.Local().Format("2006-01-02 15:04:05"),
						formatElapsed(record.Duration()),
						filepath.Base(record.SourcePath),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Stage", "Started", "Elapsed", "Source"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of jobs to show")
	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by status (running, succeeded, failed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print jobs as JSON")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				record, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					if errors.Is(err, history.ErrNotFound) {
						return fmt.Errorf("job %s not found", args[0])
					}
					return err
				}
				if asJSON {
					return writeJSON(cmd, hostapi.NewJobView(record))
				}
				printRecord(cmd, record)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the job as JSON")
	return cmd
}

func printRecord(cmd *cobra.Command, record *history.Record) {
	out := cmd.OutOrStdout()
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "%-13s %s\n", label+":", value)
		}
	}
	field("Job", record.ID)
	field("Status", string(record.Status))
	field("Stage", record.Stage)
	field("Source", record.SourcePath)
	field("Started", record.CreatedAt.Local().Format(time.RFC3339))
	field("Elapsed", formatElapsed(record.Duration()))
	if style, err := record.Style(); err == nil {
		field("Style", fmt.Sprintf("%s %.0fpt #%s %s %s translate=%s",
			style.FontName, style.FontSize, style.FontColor, style.Position, style.Style, yesNo(style.TranslateToEnglish)))
	}
	field("Audio", record.AudioPath)
	field("Captions", record.VTTPath)
	field("SRT", record.SRTPath)
	field("Output", record.OutputPath)
	if record.Status == history.StatusFailed {
		field("Error kind", record.ErrorKind)
		if record.ExitCode != nil {
			field("Exit code", fmt.Sprint(*record.ExitCode))
		}
		field("Error", record.ErrorMessage)
	}
}

func newJobsCleanCommand(ctx *commandContext) *cobra.Command {
	var removeOutput bool
	var forget bool

	cmd := &cobra.Command{
		Use:   "clean <job-id>",
		Short: "Remove a job's intermediate audio and caption files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !job.ValidID(id) {
				return services.Wrap(services.ErrValidation, "", "clean job", fmt.Sprintf("invalid job id %q", id), nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			targets := []string{
				filepath.Dir(audio.AudioPath(cfg.Paths.AudioDir, id)),
				filepath.Dir(captions.VTTPath(cfg.Paths.SubtitlesDir, id)),
			}
			if removeOutput {
				targets = append(targets, embed.OutputPath(cfg.Paths.OutputDir, id))
			}
			out := cmd.OutOrStdout()
			for _, target := range targets {
				if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
					continue
				}
				if err := os.RemoveAll(target); err != nil {
					return services.Wrap(services.ErrIO, "", "clean job", "remove "+target, err)
				}
				fmt.Fprintf(out, "Removed %s\n", target)
			}

			if forget && cfg.History.Enabled {
				err := ctx.withHistory(func(store *history.Store) error {
					return store.Delete(cmd.Context(), id)
				})
				switch {
				case errors.Is(err, history.ErrNotFound):
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "Forgot job %s\n", id)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&removeOutput, "output", false, "Also remove the captioned output video")
	cmd.Flags().BoolVar(&forget, "forget", false, "Also delete the job from the history")
	return cmd
}

func parseStatuses(values []string) ([]history.Status, error) {
	var statuses []history.Status
	for _, value := range values {
		status := history.Status(strings.ToLower(strings.TrimSpace(value)))
		switch status {
		case history.StatusRunning, history.StatusSucceeded, history.StatusFailed:
			statuses = append(statuses, status)
		default:
			return nil, services.Wrap(services.ErrValidation, "", "parse status", fmt.Sprintf("unknown status %q", value), nil)
		}
	}
	return statuses, nil
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
