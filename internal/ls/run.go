// Package ls lists the metric sets published by a server and optionally
// fetches their values.
//
// A run connects, fills a Registry from the server directory (or from
// names given by the caller), waits on the directory barrier, then drains
// the registry through the lookup/update Pipeline and waits on the
// terminal barrier before closing the connection.
package ls

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"metricls/internal/xprt"

	"github.com/rs/zerolog"
)

// Progress is animated while the run waits on the directory.
// *spinner.Spinner satisfies it.
type Progress interface {
	Start()
	Stop()
}

// Options configures one run.
type Options struct {
	Host      string
	Port      uint16
	Transport string
	// Wait bounds the directory phase.
	Wait    time.Duration
	Verbose int
	Long    bool
	// Sets bypasses the directory request when non-empty.
	Sets []string
	// MaxSets bounds the registry; zero is unbounded.
	MaxSets int
}

// ListOnly reports whether the run prints names without contacting sets.
func (o Options) ListOnly() bool {
	return o.Verbose == 0 && !o.Long
}

// Validate checks the options before anything is contacted.
func (o Options) Validate() error {
	switch {
	case o.Host == "":
		return usageError("host must not be empty")
	case o.Transport == "":
		return usageError("transport must not be empty")
	case o.Wait <= 0:
		return usageError("wait must be greater than 0 seconds")
	case o.MaxSets < 0:
		return usageError("max sets must not be negative")
	case len(o.Sets) > 0 && o.ListOnly():
		return usageError("set names require -l or -v")
	}
	return nil
}

// Result summarizes a completed run.
type Result struct {
	// Listed counts names printed in list-only mode.
	Listed int
	// Submitted counts sets sent through the pipeline.
	Submitted int
	// Status is the terminal status: the outcome of the last submitted set.
	Status int
}

// Runner executes a run. Zero-valued collaborators get defaults: output
// is discarded, the Reporter prints to Out, names resolve through
// net.DefaultResolver.
type Runner struct {
	Options  Options
	Out      io.Writer
	Reporter Reporter
	Resolver Resolver
	Progress Progress
	Log      zerolog.Logger
}

// Run executes the whole listing. Fatal failures are returned as *Error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result
	opts := r.Options
	if err := opts.Validate(); err != nil {
		return res, err
	}

	out := r.Out
	if out == nil {
		out = io.Discard
	}
	printer := NewPrinter(out, opts.Verbose, opts.Long)
	var rep Reporter = printer
	if r.Reporter != nil {
		rep = r.Reporter
	}
	var resolver Resolver = net.DefaultResolver
	if r.Resolver != nil {
		resolver = r.Resolver
	}

	ip, err := Resolve(ctx, resolver, opts.Host)
	if err != nil {
		return res, err
	}
	t, err := CreateTransport(opts.Transport, r.Log)
	if err != nil {
		return res, err
	}
	addr := netip.AddrPortFrom(ip, opts.Port)
	if opts.Verbose > 1 {
		printer.Connection(opts.Host, ip.String(), opts.Port, opts.Transport)
	}
	cctx, cancel := context.WithTimeout(ctx, opts.Wait)
	err = Connect(cctx, t, addr)
	cancel()
	if err != nil {
		return res, err
	}
	defer t.Close()

	reg := NewRegistry(opts.MaxSets)
	barriers := NewSynchronizer()
	enum := NewEnumerator(reg, barriers, opts.ListOnly(), r.Log)
	if len(opts.Sets) > 0 {
		enum.Manual(opts.Sets)
	} else if err := enum.Remote(t); err != nil {
		status := xprt.StatusOf(err)
		return res, &Error{
			Kind:   KindDirectorySubmit,
			Status: status,
			Msg:    fmt.Sprintf("dir returned synchronous error %d", status),
			Err:    err,
		}
	}

	if r.Progress != nil {
		r.Progress.Start()
	}
	status, err := barriers.WaitDirectory(time.Now().Add(opts.Wait))
	if r.Progress != nil {
		r.Progress.Stop()
	}
	if err != nil {
		return res, &Error{Kind: KindTimeout, Msg: timeoutMessage, Err: err}
	}
	if status != 0 {
		return res, &Error{
			Kind:   KindDirectory,
			Status: status,
			Msg:    fmt.Sprintf("Error %d looking up the metric set directory.", status),
		}
	}
	r.Log.Debug().Int("sets", reg.Len()).Msg("directory complete")

	if opts.ListOnly() {
		res.Listed = ListNames(reg, rep)
	} else {
		p := NewPipeline(t, reg, barriers, rep, r.Log)
		p.Drain()
		res.Submitted = p.Submitted()
	}
	res.Status = barriers.WaitTerminal()
	r.Log.Debug().Int("status", res.Status).Msg("run complete")
	return res, nil
}
