package xprt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalSocketPath returns the UNIX socket a local server listening on port
// binds. Order of precedence (first wins):
// 1) METRICLS_RUNTIME_DIR
// 2) XDG_RUNTIME_DIR
// 3) /tmp
func LocalSocketPath(port uint16) string {
	return filepath.Join(RuntimeDir(), fmt.Sprintf("metricd.%d.sock", port))
}

// RuntimeDir is the directory holding local sockets and PID files.
func RuntimeDir() string {
	if rd := os.Getenv("METRICLS_RUNTIME_DIR"); rd != "" {
		return rd
	}
	if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
		return v
	}
	// keep it short to stay under the sun_path limit
	return "/tmp"
}

func unixTarget(path string) string {
	if trimmed, ok := strings.CutPrefix(path, "/"); ok {
		return "unix:///" + trimmed
	}
	return "unix://" + path
}
