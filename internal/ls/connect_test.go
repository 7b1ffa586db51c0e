package ls

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePrefersIPv4(t *testing.T) {
	addr, err := Resolve(context.Background(), localhost, "localhost")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", addr.String())
}

func TestResolveWithoutIPv4(t *testing.T) {
	r := staticResolver{"v6only": {{IP: net.ParseIP("fe80::1")}}}
	_, err := Resolve(context.Background(), r, "v6only")
	require.EqualError(t, err, "v6only has no IPv4 address")
}

func TestErrorText(t *testing.T) {
	require.Equal(t, "timeout failure", (&Error{Kind: KindTimeout}).Error())
	require.Equal(t, "kind(42)", Kind(42).String())
	cause := context.Canceled
	err := &Error{Kind: KindConnect, Err: cause}
	require.Equal(t, cause.Error(), err.Error())
	require.ErrorIs(t, err, cause)
}
