package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext())
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "subnode",
		Short:         "Generate and burn word-level captions into videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newNodeCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
