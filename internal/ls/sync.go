package ls

import (
	"sync"
	"time"
)

// barrier is a one-shot completion flag with a status. Only the first
// signal counts.
type barrier struct {
	mu      sync.Mutex
	done    bool
	status  int
	signals int // every signal call, including the ignored ones
	ch      chan struct{}
}

func newBarrier() *barrier {
	return &barrier{ch: make(chan struct{})}
}

func (b *barrier) signal(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals++
	if b.done {
		return
	}
	b.done = true
	b.status = status
	close(b.ch)
}

func (b *barrier) state() (done bool, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done, b.status
}

// wait blocks until the barrier is signaled or expired fires. The flag is
// re-checked under the lock after every wake.
func (b *barrier) wait(expired <-chan time.Time) (int, bool) {
	for {
		if done, status := b.state(); done {
			return status, true
		}
		select {
		case <-b.ch:
		case <-expired:
			done, status := b.state()
			return status, done
		}
	}
}

// Synchronizer holds the two completion barriers of a run: the directory
// phase and the terminal phase.
type Synchronizer struct {
	dir      *barrier
	terminal *barrier
}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{dir: newBarrier(), terminal: newBarrier()}
}

// SignalDirectory marks the directory phase complete.
func (s *Synchronizer) SignalDirectory(status int) { s.dir.signal(status) }

// SignalTerminal marks the whole run complete.
func (s *Synchronizer) SignalTerminal(status int) { s.terminal.signal(status) }

// DirectoryDone reports whether the directory phase has completed.
func (s *Synchronizer) DirectoryDone() bool {
	done, _ := s.dir.state()
	return done
}

// WaitDirectory blocks until the directory phase completes or deadline
// passes, in which case ErrTimeout is returned.
func (s *Synchronizer) WaitDirectory(deadline time.Time) (int, error) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	status, ok := s.dir.wait(timer.C)
	if !ok {
		return 0, ErrTimeout
	}
	return status, nil
}

// WaitTerminal blocks until the terminal phase completes. There is no
// timeout: the number of completions is only known once lookups start.
func (s *Synchronizer) WaitTerminal() int {
	status, _ := s.terminal.wait(nil)
	return status
}
