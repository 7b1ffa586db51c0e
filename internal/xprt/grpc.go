package xprt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strings"
	"sync"
	"syscall"

	metricsv1 "metricls/api/metricsv1"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

// GRPCConfig selects how a gRPC transport reaches its server.
type GRPCConfig struct {
	// Local dials the UNIX socket of the server on the given port instead
	// of TCP.
	Local bool
	// Target and Dialer override the derived dial target. Used to run the
	// transport over in-memory listeners.
	Target string
	Dialer func(context.Context, string) (net.Conn, error)
}

type grpcTransport struct {
	cfg GRPCConfig
	log zerolog.Logger

	// ctx outlives every request and is canceled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	conn   *grpc.ClientConn
	client metricsv1.MetricSetsClient
	closed bool
}

// NewGRPC returns an unconnected transport speaking the MetricSets service.
func NewGRPC(cfg GRPCConfig, log zerolog.Logger) Transport {
	ctx, cancel := context.WithCancel(context.Background())
	return &grpcTransport{cfg: cfg, log: log, ctx: ctx, cancel: cancel}
}

func (t *grpcTransport) dialTarget(addr netip.AddrPort) (string, []grpc.DialOption) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	switch {
	case t.cfg.Target != "":
		if t.cfg.Dialer != nil {
			opts = append(opts, grpc.WithContextDialer(t.cfg.Dialer))
		}
		return t.cfg.Target, opts
	case t.cfg.Local:
		return unixTarget(LocalSocketPath(addr.Port())), append(opts, grpc.WithContextDialer(unixDialer))
	default:
		return "passthrough:///" + addr.String(), opts
	}
}

// Connect opens the channel and waits until it is ready or fails.
func (t *grpcTransport) Connect(ctx context.Context, addr netip.AddrPort) error {
	t.mu.Lock()
	switch {
	case t.closed:
		t.mu.Unlock()
		return ErrClosed
	case t.conn != nil:
		t.mu.Unlock()
		return errors.New("transport already connected")
	}
	t.mu.Unlock()

	target, opts := t.dialTarget(addr)
	t.log.Debug().Str("target", target).Msg("connecting")
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return err
	}
	conn.Connect()
	if err := waitForReady(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("connect %s: %w", target, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		_ = conn.Close()
		return ErrClosed
	}
	t.conn = conn
	t.client = metricsv1.NewMetricSetsClient(conn)
	return nil
}

// DialLocal opens a ready connection to the server bound to the local
// socket for port.
func DialLocal(ctx context.Context, port uint16) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		unixTarget(LocalSocketPath(port)),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(unixDialer),
	)
	if err != nil {
		return nil, err
	}
	conn.Connect()
	if err := waitForReady(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func unixDialer(ctx context.Context, addr string) (net.Conn, error) {
	if trimmed, ok := strings.CutPrefix(addr, "unix://"); ok {
		addr = trimmed
	}
	var d net.Dialer
	return d.DialContext(ctx, "unix", addr)
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		switch state := conn.GetState(); state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection is shut down")
		case connectivity.TransientFailure:
			return syscall.ECONNREFUSED
		default:
			if !conn.WaitForStateChange(ctx, state) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("grpc connection stuck in state %s", state.String())
			}
		}
	}
}

func (t *grpcTransport) active() (metricsv1.MetricSetsClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	if t.client == nil {
		return nil, syscall.ENOTCONN
	}
	return t.client, nil
}

// Dir opens the directory stream and delivers its pages to cb from a
// separate goroutine.
func (t *grpcTransport) Dir(cb DirFunc) error {
	client, err := t.active()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(t.ctx)
	stream, err := client.Dir(ctx, &metricsv1.DirRequest{})
	if err != nil {
		cancel()
		return err
	}
	go func() {
		defer cancel()
		for {
			page, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = fmt.Errorf("directory ended without a final page: %w", syscall.EPROTO)
				}
				t.log.Debug().Err(err).Msg("directory failed")
				cb(t, err, nil)
				return
			}
			t.log.Debug().Int("names", len(page.GetNames())).Bool("more", page.GetMore()).Msg("directory page")
			cb(t, nil, &DirPage{Names: page.GetNames(), More: page.GetMore()})
			if !page.GetMore() {
				return
			}
		}
	}()
	return nil
}

func (t *grpcTransport) ReleaseDir(page *DirPage) {
	if page != nil {
		page.Names = nil
	}
}

// Lookup fetches the set's metadata and hands a Set to cb.
func (t *grpcTransport) Lookup(name string, cb LookupFunc) error {
	if name == "" {
		return syscall.EINVAL
	}
	client, err := t.active()
	if err != nil {
		return err
	}
	go func() {
		reply, err := client.Lookup(t.ctx, &metricsv1.LookupRequest{Name: name})
		if err != nil {
			t.log.Debug().Err(err).Str("set", name).Msg("lookup failed")
			cb(t, err, nil)
			return
		}
		cb(t, nil, newGRPCSet(t, name, reply))
	}()
	return nil
}

func (t *grpcTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.cancel()
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

type grpcSet struct {
	t    *grpcTransport
	name string

	mu        sync.Mutex
	detail    Detail
	descs     []MetricDesc
	values    []Value
	destroyed bool
}

func newGRPCSet(t *grpcTransport, name string, reply *metricsv1.LookupReply) *grpcSet {
	if reply.Name != "" {
		name = reply.Name
	}
	s := &grpcSet{t: t, name: name}
	s.detail.Meta = Region{Size: reply.MetaSize, Inuse: reply.MetaInuse, GN: reply.MetaGN}
	s.detail.Data.Size = reply.DataSize
	s.detail.MetricCount = uint32(len(reply.GetMetrics()))
	s.descs = make([]MetricDesc, 0, len(reply.GetMetrics()))
	for _, md := range reply.GetMetrics() {
		s.descs = append(s.descs, MetricDesc{Name: md.Name, Type: ValueType(md.Type)})
	}
	return s
}

func (s *grpcSet) Name() string { return s.name }

func (s *grpcSet) Update(cb UpdateFunc) error {
	s.mu.Lock()
	destroyed := s.destroyed
	s.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	client, err := s.t.active()
	if err != nil {
		return err
	}
	go func() {
		reply, err := client.Update(s.t.ctx, &metricsv1.UpdateRequest{Name: s.name})
		if err == nil {
			err = s.apply(reply)
		}
		if err != nil {
			s.t.log.Debug().Err(err).Str("set", s.name).Msg("update failed")
		}
		cb(s.t, s, err)
	}()
	return nil
}

func (s *grpcSet) apply(reply *metricsv1.UpdateReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrDestroyed
	}
	if reply.MetaGN != s.detail.Meta.GN {
		return fmt.Errorf("set %s metadata changed (gn %d -> %d): %w", s.name, s.detail.Meta.GN, reply.MetaGN, syscall.ESTALE)
	}
	if len(reply.GetValues()) != len(s.descs) {
		return fmt.Errorf("set %s: update carries %d values for %d metrics: %w", s.name, len(reply.GetValues()), len(s.descs), syscall.EPROTO)
	}
	s.detail.Data.GN = reply.DataGN
	s.detail.Data.Inuse = reply.DataInuse
	s.values = make([]Value, len(reply.GetValues()))
	for i, v := range reply.GetValues() {
		s.values[i] = Value(v)
	}
	return nil
}

func (s *grpcSet) Detail() Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

func (s *grpcSet) VisitMetrics(fn func(Metric)) {
	s.mu.Lock()
	metrics := make([]Metric, 0, len(s.descs))
	for i, d := range s.descs {
		m := Metric{Desc: d}
		if i < len(s.values) {
			m.Value = s.values[i]
		}
		metrics = append(metrics, m)
	}
	s.mu.Unlock()
	for _, m := range metrics {
		fn(m)
	}
}

func (s *grpcSet) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	s.descs = nil
	s.values = nil
}
