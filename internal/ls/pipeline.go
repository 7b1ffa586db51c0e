package ls

import (
	"sync"

	"metricls/internal/xprt"

	"github.com/rs/zerolog"
)

// Pipeline drains the registry, chaining a Lookup and an Update for every
// entry. Terminal completion is signaled once the registry has been
// drained and every submitted entry has finished; the terminal status is
// the outcome of the entry that was submitted last.
type Pipeline struct {
	t        xprt.Transport
	reg      *Registry
	barriers *Synchronizer
	rep      Reporter
	log      zerolog.Logger

	mu         sync.Mutex
	pending    int
	submitted  int
	sealed     bool
	lastStatus int
}

func NewPipeline(t xprt.Transport, reg *Registry, s *Synchronizer, rep Reporter, log zerolog.Logger) *Pipeline {
	return &Pipeline{t: t, reg: reg, barriers: s, rep: rep, log: log}
}

// Drain submits every registry entry, most recently discovered first.
// It returns once all entries are submitted; completions keep arriving
// on transport goroutines.
func (p *Pipeline) Drain() {
	for {
		name, last, ok := p.reg.Pop()
		if !ok {
			break
		}
		p.submit(name, last)
	}
	p.seal()
}

// ListNames drains the registry printing names only; no request is made.
func ListNames(reg *Registry, rep Reporter) int {
	n := 0
	for {
		name, _, ok := reg.Pop()
		if !ok {
			return n
		}
		rep.Name(name)
		n++
	}
}

// Submitted returns how many entries Drain has submitted so far.
func (p *Pipeline) Submitted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted
}

func (p *Pipeline) submit(name string, last bool) {
	p.mu.Lock()
	p.pending++
	p.submitted++
	p.mu.Unlock()

	e := &entry{p: p, name: name, last: last}
	if err := p.t.Lookup(name, e.looked); err != nil {
		p.rep.LookupSubmitError(name, err)
		p.finish(e.last, xprt.StatusOf(err))
	}
}

func (p *Pipeline) seal() {
	p.mu.Lock()
	p.sealed = true
	done := p.pending == 0
	status := p.lastStatus
	p.mu.Unlock()
	if done {
		p.barriers.SignalTerminal(status)
	}
}

func (p *Pipeline) finish(last bool, status int) {
	p.mu.Lock()
	p.pending--
	if last {
		p.lastStatus = status
	}
	done := p.sealed && p.pending == 0
	status = p.lastStatus
	p.mu.Unlock()
	if done {
		p.barriers.SignalTerminal(status)
	}
}

// entry walks one set through LookupPending -> UpdatePending -> done.
type entry struct {
	p    *Pipeline
	name string
	last bool
}

func (e *entry) looked(_ xprt.Transport, err error, set xprt.Set) {
	if err != nil {
		e.p.rep.LookupError(e.name, err)
		e.p.finish(e.last, xprt.StatusOf(err))
		return
	}
	if err := set.Update(e.updated); err != nil {
		e.p.rep.UpdateError(set.Name(), err)
		set.Destroy()
		e.p.finish(e.last, xprt.StatusOf(err))
	}
}

func (e *entry) updated(_ xprt.Transport, set xprt.Set, err error) {
	if err != nil {
		e.p.log.Debug().Err(err).Str("set", set.Name()).Msg("update failed")
		e.p.rep.UpdateError(set.Name(), err)
		set.Destroy()
		e.p.finish(e.last, xprt.StatusOf(err))
		return
	}
	e.p.rep.Set(set)
	set.Destroy()
	e.p.finish(e.last, 0)
}
