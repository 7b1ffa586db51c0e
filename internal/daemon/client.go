package daemon

import (
	"context"

	metricsv1 "metricls/api/metricsv1"
	"metricls/internal/xprt"

	"google.golang.org/grpc"
)

// Dial opens a gRPC connection to the daemon bound to port over its UNIX
// socket.
func Dial(ctx context.Context, port uint16) (metricsv1.MetricSetsClient, *grpc.ClientConn, error) {
	conn, err := xprt.DialLocal(ctx, port)
	if err != nil {
		return nil, nil, err
	}
	return metricsv1.NewMetricSetsClient(conn), conn, nil
}
