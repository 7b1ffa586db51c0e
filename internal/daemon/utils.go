package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	metricsv1 "metricls/api/metricsv1"
	"metricls/internal/xprt"
)

// SocketPath returns the UNIX socket of the daemon bound to port. The
// client's local transport dials the same path.
func SocketPath(port uint16) string {
	return xprt.LocalSocketPath(port)
}

// EnsureRuntimeDir creates the directory holding sockets and PID files.
func EnsureRuntimeDir() error {
	return os.MkdirAll(xprt.RuntimeDir(), 0o700)
}

// PIDPath returns the full path to the PID file of the daemon bound to port.
func PIDPath(port uint16) string {
	return filepath.Join(xprt.RuntimeDir(), fmt.Sprintf("metricd.%d.pid", port))
}

// SnapshotPath returns where the catalog of the daemon bound to port is
// persisted unless the config names a path.
func SnapshotPath(port uint16) string {
	return filepath.Join(xprt.RuntimeDir(), fmt.Sprintf("metricd.%d.json", port))
}

// WritePID stores the provided pid into the pid file
func WritePID(port uint16, pid int) error {
	if err := EnsureRuntimeDir(); err != nil {
		return err
	}
	return os.WriteFile(PIDPath(port), []byte(fmt.Sprintf("%d\n", pid)), 0o600)
}

// RemovePID removes the pid file if it exists
func RemovePID(port uint16) error {
	if err := os.Remove(PIDPath(port)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// RunningPID returns the pid stored in the pid file if any
func RunningPID(port uint16) (int, error) {
	data, err := os.ReadFile(PIDPath(port))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// IsRunning pings the daemon bound to port and returns true if it responds.
func IsRunning(port uint16) bool {
	if _, err := os.Stat(SocketPath(port)); err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	client, conn, err := Dial(ctx, port)
	if err != nil {
		return false
	}
	defer conn.Close()

	_, err = client.Ping(ctx, &metricsv1.PingRequest{})
	return err == nil
}
