package ls

import (
	"bytes"
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"metricls/internal/xprt"

	"github.com/stretchr/testify/require"
)

type countingProgress struct{ starts, stops int }

func (p *countingProgress) Start() { p.starts++ }
func (p *countingProgress) Stop()  { p.stops++ }

func runner(kind string, out *bytes.Buffer, mutate func(*Options)) *Runner {
	opts := Options{Host: "localhost", Port: 411, Transport: kind, Wait: time.Second}
	if mutate != nil {
		mutate(&opts)
	}
	return &Runner{Options: opts, Out: out, Resolver: localhost}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var e *Error
	require.True(t, errors.As(err, &e), "want *Error, got %T", err)
	return e.ExitCode()
}

func TestRunListOnly(t *testing.T) {
	f := &fakeTransport{pages: []fakePage{
		{names: []string{"a", "b"}, more: true},
		{names: []string{"c"}},
	}}
	var out bytes.Buffer
	res, err := runner(useFake(t, f), &out, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "c\nb\na\n", out.String())
	require.Equal(t, 3, res.Listed)
	require.Zero(t, f.lookupCount())
	require.True(t, f.closed)
}

func TestRunSingleSetVerbose(t *testing.T) {
	f := &fakeTransport{metrics: map[string][]xprt.Metric{
		"s1": {{Desc: xprt.MetricDesc{Name: "x", Type: xprt.TypeU64}, Value: xprt.FromUint(5)}},
	}}
	var out bytes.Buffer
	res, err := runner(useFake(t, f), &out, func(o *Options) {
		o.Verbose = 1
		o.Sets = []string{"s1"}
	}).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, res.Status)
	require.Equal(t, 1, res.Submitted)
	require.Zero(t, f.dirCalls)

	got := out.String()
	require.True(t, bytes.HasPrefix(out.Bytes(), []byte("s1\n  METADATA --------\n")), got)
	require.Contains(t, got, "     Metric Count : 1\n")
	require.NotContains(t, got, "MemFree")
	require.True(t, bytes.HasSuffix(out.Bytes(), []byte("  -----------------\n\n")), got)
}

func TestRunSingleLookupFailure(t *testing.T) {
	f := &fakeTransport{lookupErr: map[string]error{"s1": syscall.ENOENT}}
	var out bytes.Buffer
	res, err := runner(useFake(t, f), &out, func(o *Options) {
		o.Long = true
		o.Sets = []string{"s1"}
	}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int(syscall.ENOENT), res.Status)
	require.Equal(t, "metricls: Error 2 looking up metric set 's1'.\n", out.String())
}

func TestRunDirectoryTimeout(t *testing.T) {
	f := &fakeTransport{silentDir: true}
	progress := &countingProgress{}
	r := runner(useFake(t, f), &bytes.Buffer{}, func(o *Options) {
		o.Long = true
		o.Wait = 50 * time.Millisecond
	})
	r.Progress = progress

	start := time.Now()
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	require.Contains(t, err.Error(), "Use the -w option")
	require.Equal(t, 1, exitCode(t, err))
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Zero(t, f.lookupCount(), "the pipeline never starts")
	require.Equal(t, 1, progress.starts)
	require.Equal(t, 1, progress.stops)
}

func TestRunDirectoryError(t *testing.T) {
	f := &fakeTransport{pages: []fakePage{{err: syscall.EPERM}}}
	_, err := runner(useFake(t, f), &bytes.Buffer{}, nil).Run(context.Background())
	require.EqualError(t, err, "Error 1 looking up the metric set directory.")
	require.Equal(t, 3, exitCode(t, err))
}

func TestRunTooManySets(t *testing.T) {
	f := &fakeTransport{pages: []fakePage{{names: []string{"a", "b", "c"}}}}
	_, err := runner(useFake(t, f), &bytes.Buffer{}, func(o *Options) { o.MaxSets = 2 }).Run(context.Background())
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindDirectory, e.Kind)
	require.Equal(t, int(syscall.ENOMEM), e.Status)
	require.Equal(t, 3, e.ExitCode())
}

func TestRunDirectorySubmitError(t *testing.T) {
	f := &fakeTransport{dirImmediate: syscall.EBUSY}
	_, err := runner(useFake(t, f), &bytes.Buffer{}, nil).Run(context.Background())
	require.EqualError(t, err, "dir returned synchronous error 16")
	require.Equal(t, 1, exitCode(t, err))
}

func TestRunConnectFailure(t *testing.T) {
	f := &fakeTransport{connectErr: syscall.ECONNREFUSED}
	_, err := runner(useFake(t, f), &bytes.Buffer{}, nil).Run(context.Background())
	require.Equal(t, 2, exitCode(t, err))
	require.True(t, f.closed)
	require.Zero(t, f.dirCalls)
}

func TestRunEchoesConnection(t *testing.T) {
	f := &fakeTransport{pages: []fakePage{{}}}
	var out bytes.Buffer
	_, err := runner(useFake(t, f), &out, func(o *Options) { o.Verbose = 2 }).Run(context.Background())
	require.NoError(t, err)
	require.Contains(t, out.String(), "IP Address  : 127.0.0.1\n")
}

func TestRunFailuresBeforeConnect(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
		kind   Kind
	}{
		{"unknown transport", func(o *Options) { o.Transport = "carrier-pigeon" }, KindTransportCreate},
		{"unresolvable host", func(o *Options) { o.Host = "nowhere.invalid" }, KindResolution},
		{"zero wait", func(o *Options) { o.Wait = 0 }, KindUsage},
		{"names without detail", func(o *Options) { o.Sets = []string{"a"} }, KindUsage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runner("sock", &bytes.Buffer{}, tc.mutate).Run(context.Background())
			var e *Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, tc.kind, e.Kind)
			require.Equal(t, 1, e.ExitCode())
		})
	}
}

func TestIsUsage(t *testing.T) {
	require.True(t, IsUsage(Options{}.Validate()))
	require.False(t, IsUsage(errors.New("plain")))
	require.False(t, IsUsage(&Error{Kind: KindTimeout}))
}
