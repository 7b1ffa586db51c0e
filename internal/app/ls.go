package app

import (
	"context"
	"errors"
	"time"

	"metricls/internal/config"
	"metricls/internal/ls"
)

// LsParams carries command-line choices. Zero values of Host, Port,
// Transport and Wait defer to the configuration.
type LsParams struct {
	Host      string
	Port      uint16
	Transport string
	Wait      time.Duration
	Verbose   int
	Long      bool
	Sets      []string
	Debug     bool
	// Progress, when set, is animated during the directory wait.
	Progress ls.Progress
}

func (a *App) options(cfg config.Config, p LsParams) ls.Options {
	opts := ls.Options{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Transport: cfg.Transport,
		Wait:      cfg.Wait,
		Verbose:   p.Verbose,
		Long:      p.Long,
		Sets:      p.Sets,
		MaxSets:   cfg.MaxSets,
	}
	if p.Host != "" {
		opts.Host = p.Host
	}
	if p.Port != 0 {
		opts.Port = p.Port
	}
	if p.Transport != "" {
		opts.Transport = p.Transport
	}
	if p.Wait != 0 {
		opts.Wait = p.Wait
	}
	opts.Transport = config.ResolveTransport(opts.Host, opts.Transport)
	return opts
}

// Ls runs one listing, writing to the configured stdout.
func (a *App) Ls(ctx context.Context, p LsParams) (ls.Result, error) {
	cfg, err := a.Config()
	if err != nil {
		return ls.Result{}, err
	}
	if p.Wait < 0 {
		return ls.Result{}, errors.New("wait must be greater than 0 seconds")
	}
	r := &ls.Runner{
		Options:  a.options(cfg, p),
		Out:      a.stdout,
		Resolver: hostResolver,
		Progress: p.Progress,
		Log:      a.logger(cfg, p.Debug),
	}
	return r.Run(ctx)
}
