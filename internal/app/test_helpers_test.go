package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"syscall"
	"testing"

	metricsv1 "metricls/api/metricsv1"
	"metricls/internal/xprt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

type fakeConn struct {
	invoke func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
	if f.invoke != nil {
		return f.invoke(ctx, method, args, reply, opts...)
	}
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConn) Close() error { return nil }

func stubDaemon(t *testing.T, running bool, dial func(context.Context, uint16) (metricsv1.MetricSetsClient, io.Closer, error)) {
	t.Helper()
	resetDaemonDeps()
	daemonIsRunning = func(uint16) bool { return running }
	if dial == nil {
		dial = func(context.Context, uint16) (metricsv1.MetricSetsClient, io.Closer, error) {
			return nil, nil, errors.New("dial not stubbed")
		}
	}
	dialDaemonClient = dial
	t.Cleanup(resetDaemonDeps)
}

type loopback struct{}

func (loopback) LookupIPAddr(context.Context, string) ([]net.IPAddr, error) {
	return []net.IPAddr{{IP: net.IPv4(127, 0, 0, 1)}}, nil
}

// memTransport serves a fixed catalog from memory.
type memTransport struct {
	sets    map[string][]xprt.Metric
	missing map[string]bool
	addr    netip.AddrPort
}

func (m *memTransport) Connect(_ context.Context, addr netip.AddrPort) error {
	m.addr = addr
	return nil
}

func (m *memTransport) Dir(cb xprt.DirFunc) error {
	names := make([]string, 0, len(m.sets)+len(m.missing))
	for name := range m.sets {
		names = append(names, name)
	}
	for name := range m.missing {
		names = append(names, name)
	}
	go cb(m, nil, &xprt.DirPage{Names: names})
	return nil
}

func (m *memTransport) ReleaseDir(*xprt.DirPage) {}

func (m *memTransport) Lookup(name string, cb xprt.LookupFunc) error {
	go func() {
		metrics, ok := m.sets[name]
		if !ok {
			cb(m, syscall.ENOENT, nil)
			return
		}
		cb(m, nil, &memSet{t: m, name: name, metrics: metrics})
	}()
	return nil
}

func (m *memTransport) Close() error { return nil }

type memSet struct {
	t       *memTransport
	name    string
	metrics []xprt.Metric
}

func (s *memSet) Name() string { return s.name }

func (s *memSet) Update(cb xprt.UpdateFunc) error {
	go cb(s.t, s, nil)
	return nil
}

func (s *memSet) Detail() xprt.Detail {
	return xprt.Detail{MetricCount: uint32(len(s.metrics))}
}

func (s *memSet) VisitMetrics(fn func(xprt.Metric)) {
	for _, m := range s.metrics {
		fn(m)
	}
}

func (s *memSet) Destroy() {}

// useTransport registers m under a kind unique to the test and stubs name
// resolution.
func useTransport(t *testing.T, m *memTransport) string {
	t.Helper()
	resetDaemonDeps()
	hostResolver = loopback{}
	t.Cleanup(resetDaemonDeps)
	kind := "mem:" + t.Name()
	xprt.Register(kind, func(zerolog.Logger) (xprt.Transport, error) { return m, nil })
	return kind
}
