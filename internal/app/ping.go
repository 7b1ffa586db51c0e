package app

import (
	"context"
	"fmt"
	"time"

	metricsv1 "metricls/api/metricsv1"
)

// Ping contacts the local daemon and returns its health response.
func (a *App) Ping(ctx context.Context, timeout time.Duration) (string, error) {
	var msg string
	err := a.withClient(ctx, timeout, func(ctx context.Context, client metricsv1.MetricSetsClient) error {
		resp, err := client.Ping(ctx, &metricsv1.PingRequest{})
		if err != nil {
			return fmt.Errorf("daemon ping RPC failed: %w", err)
		}
		msg = resp.GetOk()
		return nil
	})
	return msg, err
}
