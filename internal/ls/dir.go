package ls

import (
	"errors"
	"sync"
	"syscall"

	"metricls/internal/xprt"

	"github.com/rs/zerolog"
)

// Enumerator fills the registry from the server directory or from names
// given on the command line, then signals the directory barrier.
type Enumerator struct {
	reg      *Registry
	barriers *Synchronizer
	log      zerolog.Logger

	// listOnly makes directory completion also complete the run, since no
	// lookups will follow.
	listOnly bool

	mu     sync.Mutex
	status int // sticky registry failure, reported with the last page
}

func NewEnumerator(reg *Registry, s *Synchronizer, listOnly bool, log zerolog.Logger) *Enumerator {
	return &Enumerator{reg: reg, barriers: s, listOnly: listOnly, log: log}
}

// Remote requests the directory from t. The returned error is the
// immediate status of the request; page outcomes arrive through the
// barrier.
func (e *Enumerator) Remote(t xprt.Transport) error {
	return t.Dir(e.onPage)
}

// Manual enumerates names directly, without a network call. The directory
// barrier is signaled before Manual returns.
func (e *Enumerator) Manual(names []string) {
	page := &xprt.DirPage{Names: append([]string(nil), names...)}
	e.add(page)
	e.complete()
}

func (e *Enumerator) onPage(t xprt.Transport, err error, page *xprt.DirPage) {
	if err != nil {
		e.log.Debug().Err(err).Msg("directory error")
		e.finish(xprt.StatusOf(err))
		return
	}
	more := page.More
	e.add(page)
	t.ReleaseDir(page)
	if more {
		return
	}
	e.complete()
}

func (e *Enumerator) add(page *xprt.DirPage) {
	if err := e.reg.PushAll(page.Names); err != nil {
		e.log.Warn().Err(err).Int("pending", e.reg.Len()).Msg("cannot record set names")
		status := int(syscall.EIO)
		if errors.Is(err, ErrRegistryFull) {
			status = int(syscall.ENOMEM)
		}
		e.mu.Lock()
		if e.status == 0 {
			e.status = status
		}
		e.mu.Unlock()
	}
}

func (e *Enumerator) complete() {
	e.mu.Lock()
	status := e.status
	e.mu.Unlock()
	e.finish(status)
}

func (e *Enumerator) finish(status int) {
	e.barriers.SignalDirectory(status)
	if e.listOnly {
		e.barriers.SignalTerminal(status)
	}
}
