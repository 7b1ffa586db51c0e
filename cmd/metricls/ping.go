package main

import (
	"fmt"
	"time"

	"metricls/internal/app"

	"github.com/spf13/cobra"
)

var pingTimeout int

var cmdPing = &cobra.Command{
	Use:   "ping",
	Short: "Check that the local metricd answers",
	Long: `ping sends a liveness request to the metricd bound to the configured
port over its UNIX socket and prints the reply.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl := controllerFactory(app.Options{ConfigPath: configPath, Stdout: cmd.OutOrStdout()})
		reply, err := ctrl.Ping(cmd.Context(), time.Duration(pingTimeout)*time.Second)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	cmdPing.Flags().IntVarP(&pingTimeout, "timeout", "t", 2, "Seconds to wait for the reply")
	rootCmd.AddCommand(cmdPing)
}
