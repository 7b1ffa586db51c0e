package daemon

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"metricls/internal/registry"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/net"
)

// probe produces one host set. read returns one raw value per schema entry.
type probe struct {
	schema  string
	metrics []registry.MetricSchema
	read    func() ([]uint64, error)
}

// Sampler publishes host statistics as metric sets named "<host>/<schema>"
// and refreshes them every interval.
type Sampler struct {
	reg      *registry.Registry
	host     string
	interval time.Duration
	probes   []probe
	log      zerolog.Logger
}

// NewSampler prepares the host probes. The host name comes from gopsutil,
// falling back to os.Hostname.
func NewSampler(reg *registry.Registry, interval time.Duration, log zerolog.Logger) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{
		reg:      reg,
		host:     hostname(),
		interval: interval,
		probes:   hostProbes(),
		log:      log.With().Str("component", "sampler").Logger(),
	}
}

func hostname() string {
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		return info.Hostname
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "localhost"
}

// SetName returns the published name of a host set.
func (s *Sampler) SetName(schema string) string {
	return s.host + "/" + schema
}

// Define publishes every host set.
func (s *Sampler) Define() error {
	for _, p := range s.probes {
		if _, err := s.reg.Define(s.SetName(p.schema), p.metrics, []string{"host", p.schema}); err != nil {
			return fmt.Errorf("define %s: %w", p.schema, err)
		}
	}
	return nil
}

// SampleOnce refreshes every host set. A failing probe leaves its set at
// the previous values.
func (s *Sampler) SampleOnce() {
	for _, p := range s.probes {
		values, err := p.read()
		if err != nil {
			s.log.Debug().Err(err).Str("schema", p.schema).Msg("probe failed")
			continue
		}
		if err := s.reg.Store(s.SetName(p.schema), values); err != nil {
			s.log.Warn().Err(err).Str("schema", p.schema).Msg("store failed")
		}
	}
}

// Run samples until ctx is canceled.
func (s *Sampler) Run(ctx context.Context) {
	s.SampleOnce()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SampleOnce()
		}
	}
}

func u64(names ...string) []registry.MetricSchema {
	out := make([]registry.MetricSchema, 0, len(names))
	for _, n := range names {
		out = append(out, registry.MetricSchema{Name: n, Type: "u64"})
	}
	return out
}

func dbl(names ...string) []registry.MetricSchema {
	out := make([]registry.MetricSchema, 0, len(names))
	for _, n := range names {
		out = append(out, registry.MetricSchema{Name: n, Type: "d"})
	}
	return out
}

func bits(vs ...float64) []uint64 {
	out := make([]uint64, 0, len(vs))
	for _, v := range vs {
		out = append(out, math.Float64bits(v))
	}
	return out
}

// counterProbe publishes one metric of every value type, all derived from a
// tick counter, so readers can check their formatting end to end.
func counterProbe() probe {
	var tick int64
	return probe{
		schema: "types",
		metrics: []registry.MetricSchema{
			{Name: "u8", Type: "u8"}, {Name: "s8", Type: "s8"},
			{Name: "u16", Type: "u16"}, {Name: "s16", Type: "s16"},
			{Name: "u32", Type: "u32"}, {Name: "s32", Type: "s32"},
			{Name: "u64", Type: "u64"}, {Name: "s64", Type: "s64"},
			{Name: "f", Type: "f"}, {Name: "d", Type: "d"},
		},
		read: func() ([]uint64, error) {
			tick++
			neg := uint64(-tick)
			half := math.Float64bits(float64(tick) / 2)
			return []uint64{
				uint64(tick) & 0xff, neg,
				uint64(tick) & 0xffff, neg,
				uint64(tick) & 0xffffffff, neg,
				uint64(tick), neg,
				half, half,
			}, nil
		},
	}
}

func hostProbes() []probe {
	return []probe{
		counterProbe(),
		{
			schema:  "meminfo",
			metrics: u64("MemTotal", "MemFree", "MemAvailable", "Buffers", "Cached", "Used"),
			read: func() ([]uint64, error) {
				vm, err := mem.VirtualMemory()
				if err != nil {
					return nil, err
				}
				return []uint64{vm.Total, vm.Free, vm.Available, vm.Buffers, vm.Cached, vm.Used}, nil
			},
		},
		{
			schema:  "loadavg",
			metrics: append(dbl("load1", "load5", "load15"), u64("uptime")...),
			read: func() ([]uint64, error) {
				avg, err := load.Avg()
				if err != nil {
					return nil, err
				}
				uptime, err := host.Uptime()
				if err != nil {
					return nil, err
				}
				return append(bits(avg.Load1, avg.Load5, avg.Load15), uptime), nil
			},
		},
		{
			schema:  "cpu",
			metrics: dbl("user", "nice", "system", "idle", "iowait", "irq", "softirq", "steal"),
			read: func() ([]uint64, error) {
				times, err := cpu.Times(false)
				if err != nil {
					return nil, err
				}
				if len(times) == 0 {
					return nil, fmt.Errorf("no cpu times reported")
				}
				t := times[0]
				return bits(t.User, t.Nice, t.System, t.Idle, t.Iowait, t.Irq, t.Softirq, t.Steal), nil
			},
		},
		{
			schema:  "netdev",
			metrics: u64("bytes_sent", "bytes_recv", "packets_sent", "packets_recv", "errin", "errout"),
			read: func() ([]uint64, error) {
				counters, err := net.IOCounters(false)
				if err != nil {
					return nil, err
				}
				if len(counters) == 0 {
					return nil, fmt.Errorf("no network counters reported")
				}
				c := counters[0]
				return []uint64{c.BytesSent, c.BytesRecv, c.PacketsSent, c.PacketsRecv, c.Errin, c.Errout}, nil
			},
		},
	}
}
