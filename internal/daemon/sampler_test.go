package daemon

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"metricls/internal/registry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestSampler(t *testing.T, probes ...probe) (*Sampler, *registry.Registry) {
	t.Helper()
	reg, err := registry.New("", time.Hour, zerolog.Nop())
	require.NoError(t, err)
	return &Sampler{reg: reg, host: "node1", interval: 10 * time.Millisecond, probes: probes, log: zerolog.Nop()}, reg
}

func TestSamplerStoresProbeValues(t *testing.T) {
	calls := 0
	s, reg := newTestSampler(t, probe{
		schema:  "fake",
		metrics: u64("x", "y"),
		read: func() ([]uint64, error) {
			calls++
			return []uint64{uint64(calls), 7}, nil
		},
	})
	require.NoError(t, s.Define())
	s.SampleOnce()
	s.SampleOnce()

	set, ok := reg.Get("node1/fake")
	require.True(t, ok)
	require.Equal(t, []uint64{2, 7}, set.Values)
	require.Equal(t, uint64(2), set.DataGN)
	require.Equal(t, []string{"fake", "host"}, set.Tags)
}

func TestSamplerKeepsValuesOnProbeFailure(t *testing.T) {
	fail := false
	s, reg := newTestSampler(t, probe{
		schema:  "flaky",
		metrics: u64("x"),
		read: func() ([]uint64, error) {
			if fail {
				return nil, errors.New("unavailable")
			}
			return []uint64{9}, nil
		},
	})
	require.NoError(t, s.Define())
	s.SampleOnce()
	fail = true
	s.SampleOnce()

	set, _ := reg.Get("node1/flaky")
	require.Equal(t, []uint64{9}, set.Values)
	require.Equal(t, uint64(1), set.DataGN)
}

func TestSamplerRunStopsOnCancel(t *testing.T) {
	s, reg := newTestSampler(t, counterProbe())
	require.NoError(t, s.Define())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		set, _ := reg.Get("node1/types")
		return set.DataGN >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestCounterProbeValues(t *testing.T) {
	p := counterProbe()
	values, err := p.read()
	require.NoError(t, err)
	require.Len(t, values, len(p.metrics))
	require.Equal(t, uint64(1), values[0])
	require.Equal(t, int64(-1), int64(values[1]))
	require.Equal(t, 0.5, math.Float64frombits(values[9]))
}

func TestHostProbesMatchSchemas(t *testing.T) {
	for _, p := range hostProbes() {
		values, err := p.read()
		if err != nil {
			t.Logf("%s probe unavailable here: %v", p.schema, err)
			continue
		}
		require.Len(t, values, len(p.metrics), p.schema)
	}
}
