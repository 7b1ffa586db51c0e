package main

import (
	"fmt"

	"metricls/internal/app"
	"metricls/internal/tui"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdTUI)
}

// runTUI is replaced in tests.
var runTUI = tui.Run

var cmdTUI = &cobra.Command{
	Use:   "tui",
	Short: "Browse the metric sets of a server interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := endpoint(cmd)
		if err != nil {
			return err
		}
		controller := controllerFactory(app.Options{ConfigPath: configPath})
		if err := runTUI(controller, params); err != nil {
			return fmt.Errorf("tui exited with error: %w", err)
		}
		return nil
	},
}
