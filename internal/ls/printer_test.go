package ls

import (
	"bytes"
	"strings"
	"syscall"
	"testing"

	"metricls/internal/xprt"

	"github.com/stretchr/testify/require"
)

func sampleSet() *fakeSet {
	return &fakeSet{t: &fakeTransport{}, name: "node1/meminfo", metrics: []xprt.Metric{
		{Desc: xprt.MetricDesc{Name: "MemFree", Type: xprt.TypeU64}, Value: xprt.FromUint(42)},
		{Desc: xprt.MetricDesc{Name: "Active", Type: xprt.TypeU32}, Value: xprt.FromUint(7)},
	}}
}

func TestPrinterSetLong(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, 0, true).Set(sampleSet())
	require.Equal(t, "node1/meminfo\n"+
		" u64 42"+pad(14)+" MemFree\n"+
		" u32 "+pad(7)+"7"+pad(8)+" Active\n"+
		"\n", out.String())
}

func pad(n int) string { return strings.Repeat(" ", n) }

func TestPrinterSetVerbose(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, 1, false).Set(sampleSet())
	require.Equal(t, "node1/meminfo\n"+
		"  METADATA --------\n"+
		"             Size : 256\n"+
		"            Inuse : 120\n"+
		"     Metric Count : 2\n"+
		"               GN : 2\n"+
		"  DATA ------------\n"+
		"             Size : 64\n"+
		"            Inuse : 40\n"+
		"               GN : 9\n"+
		"  -----------------\n"+
		"\n", out.String())
}

func TestPrinterErrors(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, 0, true)
	p.LookupError("s1", syscall.ENOENT)
	p.UpdateError("s2", syscall.ESTALE)
	p.LookupSubmitError("s3", syscall.EBUSY)
	require.Equal(t, "metricls: Error 2 looking up metric set 's1'.\n"+
		"s2\n    Error 116 updating metric set.\n\n"+
		"lookup returned 16 for set 's3'\n", out.String())
}

func TestPrinterConnection(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, 2, false).Connection("localhost", "127.0.0.1", 411, "sock")
	require.Equal(t, "Hostname    : localhost\n"+
		"IP Address  : 127.0.0.1\n"+
		"Port        : 411\n"+
		"Transport   : sock\n", out.String())
}
