package main

import (
	"github.com/spf13/cobra"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
)

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Show the equity and crypto fear and greed readings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		snap, err := follow(cmd.Context(), engine.NewMoodOrchestrator(e), "", cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), snap.Result)
	},
}

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Show the weekly market outlook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		snap, err := follow(cmd.Context(), engine.NewOutlookOrchestrator(e), "", cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), snap.Result)
	},
}
