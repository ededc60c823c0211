package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumina/internal/config"
	"lumina/internal/logging"
	"lumina/internal/store"
	"lumina/internal/watcher"
)

func newTickCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one watch cycle immediately and exit",
		Long: "Processes every enabled watch once without starting the daemon. " +
			"Useful for testing a new watch configuration end to end.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}
				manager := watcher.NewManager(cfg, st, logger)
				manager.RunTick(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Tick complete")
				return nil
			})
		},
	}
}
