// Package xprt is the transport library the client talks to metric servers
// through. A Transport is created by kind, connected once, and then
// serves asynchronous directory, lookup and update requests whose results
// arrive on the transport's own goroutines.
package xprt

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DirPage is one page of a directory response.
type DirPage struct {
	Names []string
	More  bool
}

// DirFunc receives directory pages. It is called once per page until a
// page with More unset or an error is delivered.
type DirFunc func(t Transport, err error, page *DirPage)

// LookupFunc receives the outcome of a Lookup exactly once.
type LookupFunc func(t Transport, err error, set Set)

// UpdateFunc receives the outcome of an Update exactly once.
type UpdateFunc func(t Transport, set Set, err error)

// Transport is a connection to one metric server.
type Transport interface {
	Connect(ctx context.Context, addr netip.AddrPort) error
	Dir(cb DirFunc) error
	ReleaseDir(page *DirPage)
	Lookup(name string, cb LookupFunc) error
	Close() error
}

// Set is a local handle on a remote metric set.
type Set interface {
	Name() string
	Update(cb UpdateFunc) error
	Detail() Detail
	// VisitMetrics calls fn for every metric in schema order.
	VisitMetrics(fn func(Metric))
	// Destroy releases the local copy of the set.
	Destroy()
}

// Factory builds an unconnected transport.
type Factory func(log zerolog.Logger) (Transport, error)

var (
	ErrUnknownKind = errors.New("unknown transport")
	ErrClosed      = errors.New("transport closed")
	ErrDestroyed   = errors.New("set destroyed")
)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register makes a transport kind available to New. Registering a kind
// twice replaces the previous factory.
func Register(kind string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[kind] = f
}

// Kinds lists registered transport kinds.
func Kinds() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New creates a transport of the given kind. log receives the transport's
// diagnostics.
func New(kind string, log zerolog.Logger) (Transport, error) {
	factoriesMu.RLock()
	f, ok := factories[kind]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownKind, kind, strings.Join(Kinds(), ", "))
	}
	return f(log.With().Str("xprt", kind).Logger())
}

// StatusOf converts a transport error into an errno-style status. A nil
// error is status 0.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return int(syscall.ETIMEDOUT)
	}
	if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
		return int(syscall.ECANCELED)
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.NotFound:
			return int(syscall.ENOENT)
		case codes.Unavailable:
			return int(syscall.ECONNREFUSED)
		case codes.DeadlineExceeded:
			return int(syscall.ETIMEDOUT)
		case codes.ResourceExhausted:
			return int(syscall.ENOMEM)
		case codes.InvalidArgument:
			return int(syscall.EINVAL)
		case codes.PermissionDenied:
			return int(syscall.EPERM)
		case codes.Canceled:
			return int(syscall.ECANCELED)
		}
	}
	return int(syscall.EIO)
}

type unavailable struct{ kind string }

func (u unavailable) create(zerolog.Logger) (Transport, error) {
	return nil, fmt.Errorf("%s transport is not available in this build", u.kind)
}

func init() {
	Register("sock", func(log zerolog.Logger) (Transport, error) {
		return NewGRPC(GRPCConfig{}, log), nil
	})
	Register("local", func(log zerolog.Logger) (Transport, error) {
		return NewGRPC(GRPCConfig{Local: true}, log), nil
	})
	Register("rdma", unavailable{kind: "rdma"}.create)
}
