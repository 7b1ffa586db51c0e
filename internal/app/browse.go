package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"metricls/internal/ls"
	"metricls/internal/xprt"
)

// MetricView is one rendered metric of a set.
type MetricView struct {
	Name  string
	Type  string
	Value string
}

// SetView is a snapshot of one set as the browser shows it. Err is set
// when the lookup or update failed; Detail and Metrics are empty then.
type SetView struct {
	Name    string
	Detail  xprt.Detail
	Metrics []MetricView
	Err     error
}

// BrowseParams selects the server to browse. Zero values defer to the
// configuration.
type BrowseParams struct {
	Host      string
	Port      uint16
	Transport string
	Wait      time.Duration
}

// Browse looks up and updates every set of the server and returns them
// sorted by name.
func (a *App) Browse(ctx context.Context, p BrowseParams) ([]SetView, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	opts := a.options(cfg, LsParams{Host: p.Host, Port: p.Port, Transport: p.Transport, Wait: p.Wait})
	opts.Verbose = 1
	opts.Long = true

	col := &collector{}
	r := &ls.Runner{
		Options:  opts,
		Reporter: col,
		Resolver: hostResolver,
		Log:      a.logger(cfg, false),
	}
	if _, err := r.Run(ctx); err != nil {
		return nil, err
	}
	return col.sorted(), nil
}

// collector is an ls.Reporter that keeps set snapshots.
type collector struct {
	mu   sync.Mutex
	sets []SetView
}

func (c *collector) add(v SetView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, v)
}

func (c *collector) sorted() []SetView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]SetView(nil), c.sets...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *collector) Name(name string) { c.add(SetView{Name: name}) }

func (c *collector) LookupSubmitError(name string, err error) {
	c.add(SetView{Name: name, Err: err})
}

func (c *collector) LookupError(name string, err error) {
	c.add(SetView{Name: name, Err: err})
}

func (c *collector) UpdateError(name string, err error) {
	c.add(SetView{Name: name, Err: err})
}

func (c *collector) Set(set xprt.Set) {
	v := SetView{Name: set.Name(), Detail: set.Detail()}
	set.VisitMetrics(func(m xprt.Metric) {
		v.Metrics = append(v.Metrics, MetricView{
			Name:  m.Desc.Name,
			Type:  m.Desc.Type.String(),
			Value: strings.TrimSpace(m.Value.Format(m.Desc.Type)),
		})
	})
	c.add(v)
}
