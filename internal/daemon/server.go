package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	metricsv1 "metricls/api/metricsv1"
	"metricls/internal/config"
	"metricls/internal/registry"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// Server serves the metric set catalog over TCP and the local UNIX socket.
type Server struct {
	port     uint16
	grpc     *grpc.Server
	tcp      net.Listener
	unix     net.Listener
	sockPath string
	reg      *registry.Registry
	cancel   context.CancelFunc
	done     chan struct{}
	log      zerolog.Logger
}

// StartDaemon binds both listeners, publishes the host sets and starts
// sampling.
func StartDaemon(cfg config.Config, log zerolog.Logger) (*Server, error) {
	if err := EnsureRuntimeDir(); err != nil {
		return nil, err
	}
	port := cfg.Port
	path := SocketPath(port)

	// If stale socket file exists but daemon is not running, remove it
	if _, err := os.Stat(path); err == nil && !IsRunning(port) {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	snapshot := cfg.SnapshotPath
	if snapshot == "" {
		snapshot = SnapshotPath(port)
	}
	reg, err := registry.New(snapshot, cfg.SnapshotInterval, log)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	sampler := NewSampler(reg, cfg.SampleInterval, log)
	if err := sampler.Define(); err != nil {
		return nil, err
	}

	tcp, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	unix, err := net.Listen("unix", path)
	if err != nil {
		tcp.Close()
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		tcp.Close()
		unix.Close()
		return nil, err
	}

	s := newServer(reg, cfg.DirPageSize, log)
	s.port = port
	s.tcp = tcp
	s.unix = unix
	s.sockPath = path
	if err := WritePID(port, os.Getpid()); err != nil {
		s.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		sampler.Run(ctx)
	}()
	go s.serve(tcp)
	go s.serve(unix)
	log.Info().Uint16("port", port).Str("socket", path).Int("sets", reg.Len()).Msg("serving")
	return s, nil
}

func newServer(reg *registry.Registry, pageSize int, log zerolog.Logger) *Server {
	gs := grpc.NewServer()
	metricsv1.RegisterMetricSetsServer(gs, newService(reg, pageSize, log))
	return &Server{grpc: gs, reg: reg, log: log}
}

func (s *Server) serve(ln net.Listener) {
	if err := s.grpc.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		s.log.Error().Err(err).Str("addr", ln.Addr().String()).Msg("serve failed")
	}
}

// Registry exposes the served catalog.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}

// Close stops sampling, drains in-flight calls, flushes the catalog and
// unlinks the socket and PID file.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		s.grpc.Stop()
	}
	for _, ln := range []net.Listener{s.tcp, s.unix} {
		if ln != nil {
			_ = ln.Close()
		}
	}

	var errs []error
	if err := s.reg.Flush(); err != nil {
		errs = append(errs, err)
	}
	if s.sockPath != "" {
		if err := os.Remove(s.sockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		if err := RemovePID(s.port); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StopRunningDaemon sends a termination signal to the daemon bound to port
// if any.
func StopRunningDaemon(port uint16, force bool) error {
	pid, err := RunningPID(port)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning(port) {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", PIDPath(port))
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(port, proc, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(port, 3*time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(port, proc, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(port, 2*time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(port uint16, proc *os.Process, sig syscall.Signal) error {
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = RemovePID(port)
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(port uint16, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning(port) {
			_ = RemovePID(port)
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
