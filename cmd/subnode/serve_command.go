package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"subnode/internal/history"
	"subnode/internal/hostapi"
	"subnode/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node registry over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := checkReady(cmd, cfg); err != nil {
				return err
			}

			p, logger, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			opts := []hostapi.Option{hostapi.WithLogger(logger)}
			if cfg.History.Enabled {
				store, err := history.Open(cfg.HistoryPath())
				if err != nil {
					return err
				}
				defer store.Close()
				// A previous process may have died mid-job.
				if n, err := store.MarkInterrupted(cmd.Context()); err != nil {
					logging.WarnWithContext(logger, "could not mark interrupted jobs", "history_recover_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "stale jobs stay listed as running"),
					)
				} else if n > 0 {
					logger.Info("marked interrupted jobs as failed",
						logging.String(logging.FieldEventType, "history_recovered"),
						logging.Int64("count", n),
					)
				}
				opts = append(opts, hostapi.WithHistory(store))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			address := strings.TrimSpace(bind)
			if address == "" {
				address = cfg.Server.Bind
			}
			srv := hostapi.New(registry(p), opts...)
			if err := srv.Start(runCtx, address); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving nodes on http://%s\n", srv.Addr())

			<-runCtx.Done()
			srv.Stop()
			logger.Info("host api stopped", logging.String(logging.FieldEventType, "server_stop"))
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to server.bind)")
	return cmd
}
