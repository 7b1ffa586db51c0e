package ls

import (
	"errors"
	"sync"
)

// ErrRegistryFull is returned by Push once the registry holds its maximum
// number of entries.
var ErrRegistryFull = errors.New("set registry is full")

// Registry holds set names awaiting processing. It is a stack: names are
// pushed to the front and popped from the front, so the processing order
// is the reverse of the discovery order. Names need not be unique.
type Registry struct {
	mu    sync.Mutex
	names []string // top of stack is the last element
	limit int
}

// NewRegistry returns an empty registry. limit bounds the number of entries;
// zero means unbounded.
func NewRegistry(limit int) *Registry {
	return &Registry{limit: limit}
}

// Push inserts name at the front.
func (r *Registry) Push(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.names) >= r.limit {
		return ErrRegistryFull
	}
	r.names = append(r.names, name)
	return nil
}

// PushAll pushes names in order, stopping at the first failure.
func (r *Registry) PushAll(names []string) error {
	for _, name := range names {
		if err := r.Push(name); err != nil {
			return err
		}
	}
	return nil
}

// Pop removes the front entry. last reports whether the registry is empty
// after the removal; ok is false if there was nothing to remove.
func (r *Registry) Pop() (name string, last bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.names)
	if n == 0 {
		return "", false, false
	}
	name = r.names[n-1]
	r.names[n-1] = ""
	r.names = r.names[:n-1]
	return name, n == 1, true
}

// Len returns the number of pending entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Snapshot returns the pending entries front to back without removing them.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.names))
	for i, name := range r.names {
		out[len(r.names)-1-i] = name
	}
	return out
}
