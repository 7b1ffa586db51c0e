package ls

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"metricls/internal/xprt"
)

// Reporter receives per-set outcomes. Methods are called from transport
// goroutines and must be safe for concurrent use.
type Reporter interface {
	// Name is called for each set in list-only mode.
	Name(name string)
	LookupSubmitError(name string, err error)
	LookupError(name string, err error)
	UpdateError(name string, err error)
	// Set is called with a freshly updated set. The set is destroyed once
	// Set returns.
	Set(set xprt.Set)
}

// Printer renders outcomes as text. Each set is written as one block so
// concurrent completions never interleave.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose int
	long    bool
}

// NewPrinter writes to w. verbose > 0 adds the detail block, long adds one
// line per metric.
func NewPrinter(w io.Writer, verbose int, long bool) *Printer {
	return &Printer{w: w, verbose: verbose, long: long}
}

func (p *Printer) write(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.w.Write(b)
}

func (p *Printer) Name(name string) {
	p.write([]byte(name + "\n"))
}

func (p *Printer) LookupSubmitError(name string, err error) {
	p.write([]byte(fmt.Sprintf("lookup returned %d for set '%s'\n", xprt.StatusOf(err), name)))
}

func (p *Printer) LookupError(name string, err error) {
	p.write([]byte(fmt.Sprintf("metricls: Error %d looking up metric set '%s'.\n", xprt.StatusOf(err), name)))
}

func (p *Printer) UpdateError(name string, err error) {
	p.write([]byte(fmt.Sprintf("%s\n    Error %d updating metric set.\n\n", name, xprt.StatusOf(err))))
}

func (p *Printer) Set(set xprt.Set) {
	var b bytes.Buffer
	b.WriteString(set.Name())
	b.WriteByte('\n')
	if p.verbose > 0 {
		writeDetail(&b, set.Detail())
	}
	if p.long {
		set.VisitMetrics(func(m xprt.Metric) {
			fmt.Fprintf(&b, "%4s %-16s %s\n", m.Desc.Type, m.Value.Format(m.Desc.Type), m.Desc.Name)
		})
	}
	b.WriteByte('\n')
	p.write(b.Bytes())
}

// Connection echoes the connection parameters.
func (p *Printer) Connection(host, ip string, port uint16, kind string) {
	p.write([]byte(fmt.Sprintf(
		"Hostname    : %s\nIP Address  : %s\nPort        : %d\nTransport   : %s\n",
		host, ip, port, kind,
	)))
}

func writeDetail(b *bytes.Buffer, d xprt.Detail) {
	fmt.Fprintf(b, "  METADATA --------\n")
	fmt.Fprintf(b, "             Size : %d\n", d.Meta.Size)
	fmt.Fprintf(b, "            Inuse : %d\n", d.Meta.Inuse)
	fmt.Fprintf(b, "     Metric Count : %d\n", d.MetricCount)
	fmt.Fprintf(b, "               GN : %d\n", d.Meta.GN)
	fmt.Fprintf(b, "  DATA ------------\n")
	fmt.Fprintf(b, "             Size : %d\n", d.Data.Size)
	fmt.Fprintf(b, "            Inuse : %d\n", d.Data.Inuse)
	fmt.Fprintf(b, "               GN : %d\n", d.Data.GN)
	fmt.Fprintf(b, "  -----------------\n")
}
