package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	metricsv1 "metricls/api/metricsv1"
	"metricls/internal/daemon"
	"metricls/internal/ls"
)

var (
	daemonIsRunning  = daemon.IsRunning
	daemonPID        = daemon.RunningPID
	dialDaemonClient = dialDaemon
)

var hostResolver ls.Resolver = net.DefaultResolver

func dialDaemon(ctx context.Context, port uint16) (metricsv1.MetricSetsClient, io.Closer, error) {
	client, conn, err := daemon.Dial(ctx, port)
	if err != nil {
		return nil, nil, err
	}
	return client, conn, nil
}

func resetDaemonDeps() {
	daemonIsRunning = daemon.IsRunning
	daemonPID = daemon.RunningPID
	dialDaemonClient = dialDaemon
	hostResolver = net.DefaultResolver
}

func (a *App) withClient(ctx context.Context, timeout time.Duration, fn func(context.Context, metricsv1.MetricSetsClient) error) error {
	if timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	if !daemonIsRunning(cfg.Port) {
		return errors.New("daemon is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, conn, err := dialDaemonClient(ctx, cfg.Port)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	if conn != nil {
		defer conn.Close()
	}

	return fn(ctx, client)
}
