package ls

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"testing"

	"metricls/internal/xprt"

	"github.com/rs/zerolog"
)

type fakePage struct {
	names []string
	more  bool
	err   error
}

// fakeTransport answers from memory. Callbacks run on fresh goroutines, as
// a real transport's would.
type fakeTransport struct {
	pages        []fakePage
	silentDir    bool // accept Dir but never answer
	dirImmediate error
	connectErr   error
	lookupErr    map[string]error
	lookupSubmit map[string]error
	updateErr    map[string]error
	metrics      map[string][]xprt.Metric

	mu       sync.Mutex
	dirCalls int
	lookups  []string
	updates  []string
	released int
	closed   bool
}

func (f *fakeTransport) Connect(context.Context, netip.AddrPort) error { return f.connectErr }

func (f *fakeTransport) Dir(cb xprt.DirFunc) error {
	f.mu.Lock()
	f.dirCalls++
	f.mu.Unlock()
	if f.dirImmediate != nil {
		return f.dirImmediate
	}
	if f.silentDir {
		return nil
	}
	go func() {
		for _, p := range f.pages {
			if p.err != nil {
				cb(f, p.err, nil)
				return
			}
			cb(f, nil, &xprt.DirPage{Names: append([]string(nil), p.names...), More: p.more})
		}
	}()
	return nil
}

func (f *fakeTransport) ReleaseDir(*xprt.DirPage) {
	f.mu.Lock()
	f.released++
	f.mu.Unlock()
}

func (f *fakeTransport) Lookup(name string, cb xprt.LookupFunc) error {
	f.mu.Lock()
	f.lookups = append(f.lookups, name)
	f.mu.Unlock()
	if err := f.lookupSubmit[name]; err != nil {
		return err
	}
	go func() {
		if err := f.lookupErr[name]; err != nil {
			cb(f, err, nil)
			return
		}
		cb(f, nil, &fakeSet{t: f, name: name, metrics: f.metrics[name]})
	}()
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lookups)
}

type fakeSet struct {
	t       *fakeTransport
	name    string
	metrics []xprt.Metric
}

func (s *fakeSet) Name() string { return s.name }

func (s *fakeSet) Update(cb xprt.UpdateFunc) error {
	s.t.mu.Lock()
	s.t.updates = append(s.t.updates, s.name)
	s.t.mu.Unlock()
	go cb(s.t, s, s.t.updateErr[s.name])
	return nil
}

func (s *fakeSet) Detail() xprt.Detail {
	return xprt.Detail{
		Meta:        xprt.Region{Size: 256, Inuse: 120, GN: 2},
		Data:        xprt.Region{Size: 64, Inuse: 40, GN: 9},
		MetricCount: uint32(len(s.metrics)),
	}
}

func (s *fakeSet) VisitMetrics(fn func(xprt.Metric)) {
	for _, m := range s.metrics {
		fn(m)
	}
}

func (s *fakeSet) Destroy() {}

// useFake registers f under a kind unique to the test.
func useFake(t *testing.T, f *fakeTransport) string {
	t.Helper()
	kind := "fake:" + t.Name()
	xprt.Register(kind, func(zerolog.Logger) (xprt.Transport, error) { return f, nil })
	return kind
}

type staticResolver map[string][]net.IPAddr

func (r staticResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	addrs, ok := r[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

var localhost = staticResolver{
	"localhost": {{IP: net.ParseIP("::1")}, {IP: net.ParseIP("127.0.0.1")}},
}

// recorder is a Reporter that keeps outcomes in memory.
type recorder struct {
	mu      sync.Mutex
	names   []string
	sets    []string
	lookups map[string]error
	updates map[string]error
	submits map[string]error
}

func newRecorder() *recorder {
	return &recorder{lookups: map[string]error{}, updates: map[string]error{}, submits: map[string]error{}}
}

func (r *recorder) Name(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recorder) LookupSubmitError(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submits[name] = err
}

func (r *recorder) LookupError(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[name] = err
}

func (r *recorder) UpdateError(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[name] = err
}

func (r *recorder) Set(set xprt.Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, set.Name())
}
