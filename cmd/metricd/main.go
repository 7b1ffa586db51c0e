package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"metricls/internal/config"
	"metricls/internal/daemon"
	"metricls/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		force      bool
		port       uint16
		debug      bool
	)
	cmd := &cobra.Command{
		Use:           "metricd",
		Short:         "Serve host metric sets to metricls",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			level := cfg.LogLevel
			if level == "warn" {
				level = "info"
			}
			if debug {
				level = "debug"
			}
			log := logging.New(os.Stderr, level)

			if daemon.IsRunning(cfg.Port) {
				if !force {
					pid, err := daemon.RunningPID(cfg.Port)
					if err != nil {
						return fmt.Errorf("daemon appears running but pid check failed: %w", err)
					}
					log.Warn().Int("pid", pid).Msg("daemon is already running, use --force to restart")
					return nil
				}
				log.Info().Msg("stopping existing daemon")
				if err := daemon.StopRunningDaemon(cfg.Port, true); err != nil {
					return fmt.Errorf("failed to stop running daemon: %w", err)
				}
			}

			srv, err := daemon.StartDaemon(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}
			log.Info().Int("pid", os.Getpid()).Msg("daemon started, press Ctrl+C to stop")

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			<-sigc
			log.Info().Msg("stopping daemon")
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error shutting down daemon: %w", err)
			}
			log.Info().Msg("daemon stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to JSON config file")
	cmd.Flags().BoolVar(&force, "force", false, "Stop an existing daemon before starting")
	cmd.Flags().Uint16VarP(&port, "port", "p", config.DefaultPort, "Port to listen on (TCP and local socket)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}
