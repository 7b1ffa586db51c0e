package ls

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"metricls/internal/xprt"

	"github.com/rs/zerolog"
)

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Resolve returns the first IPv4 address of host.
func Resolve(ctx context.Context, r Resolver, host string) (netip.Addr, error) {
	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return netip.Addr{}, &Error{Kind: KindResolution, Msg: fmt.Sprintf("cannot resolve %q: %v", host, err), Err: err}
	}
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			addr, _ := netip.AddrFromSlice(ip4)
			return addr, nil
		}
	}
	return netip.Addr{}, &Error{Kind: KindResolution, Msg: fmt.Sprintf("%s has no IPv4 address", host)}
}

// CreateTransport instantiates a transport of the given kind.
func CreateTransport(kind string, log zerolog.Logger) (xprt.Transport, error) {
	t, err := xprt.New(kind, log)
	if err != nil {
		return nil, &Error{Kind: KindTransportCreate, Msg: fmt.Sprintf("Error creating transport: %v", err), Err: err}
	}
	return t, nil
}

// Connect establishes the connection. On failure the transport is closed.
func Connect(ctx context.Context, t xprt.Transport, addr netip.AddrPort) error {
	if err := t.Connect(ctx, addr); err != nil {
		_ = t.Close()
		return &Error{Kind: KindConnect, Status: xprt.StatusOf(err), Msg: fmt.Sprintf("metricls: %v", err), Err: err}
	}
	return nil
}
