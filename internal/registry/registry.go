package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound   = errors.New("set not found")
	ErrValueCount = errors.New("value count does not match schema")
)

// Registry is a threadsafe in-memory catalog of published metric sets.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Set
	byTag  map[string]strset
	log    zerolog.Logger

	// Value updates are persisted at most once per saveInterval; schema
	// changes are persisted immediately.
	saveInterval time.Duration
	saveMu       sync.Mutex
	lastSave     time.Time

	// Where to snapshot. If empty, snapshotting is disabled.
	SnapshotPath string
}

// New loads snapshot if present and returns a ready registry.
func New(snapshotPath string, saveInterval time.Duration, log zerolog.Logger) (*Registry, error) {
	if saveInterval <= 0 {
		saveInterval = 30 * time.Second
	}
	r := &Registry{
		byName:       make(map[string]*Set),
		byTag:        make(map[string]strset),
		log:          log,
		saveInterval: saveInterval,
		SnapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		if err := r.loadSnapshot(snapshotPath); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Define publishes a set or replaces its schema. Re-defining a set with an
// identical schema is a no-op; a different schema bumps the metadata
// generation and zeroes the values. Returns whether anything changed.
func (r *Registry) Define(name string, schema []MetricSchema, tags []string) (bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return false, err
	}
	schema, err = normalizeSchema(schema)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	s := r.byName[name]
	if s != nil && slices.Equal(s.Schema, schema) {
		r.mu.Unlock()
		return false, nil
	}
	ts := now()
	if s == nil {
		s = &Set{Name: name, CreatedAt: ts}
		r.byName[name] = s
	} else {
		r.untagLocked(s)
	}
	s.Schema = schema
	s.Values = make([]uint64, len(schema))
	s.Tags = norm(tags)
	s.MetaGN++
	s.UpdatedAt = ts
	for _, t := range s.Tags {
		if _, ok := r.byTag[t]; !ok {
			r.byTag[t] = make(strset)
		}
		r.byTag[t].add(name)
	}
	r.mu.Unlock()

	r.save()
	return true, nil
}

// Store replaces the values of a set and bumps its data generation.
func (r *Registry) Store(name string, values []uint64) error {
	r.mu.Lock()
	s := r.byName[name]
	if s == nil {
		r.mu.Unlock()
		return errNotFound(name)
	}
	if len(values) != len(s.Schema) {
		r.mu.Unlock()
		return fmt.Errorf("set %q: %w (%d values, %d metrics)", name, ErrValueCount, len(values), len(s.Schema))
	}
	copy(s.Values, values)
	s.DataGN++
	s.UpdatedAt = now()
	r.mu.Unlock()

	r.maybeSave()
	return nil
}

// Remove deletes a set by name.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	s := r.byName[name]
	if s == nil {
		r.mu.Unlock()
		return false
	}
	delete(r.byName, name)
	r.untagLocked(s)
	r.mu.Unlock()

	r.save()
	return true
}

func (r *Registry) untagLocked(s *Set) {
	for _, t := range s.Tags {
		delete(r.byTag[t], s.Name)
		if len(r.byTag[t]) == 0 {
			delete(r.byTag, t)
		}
	}
}

// Reset clears the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.byName = make(map[string]*Set)
	r.byTag = make(map[string]strset)
	r.mu.Unlock()

	r.save()
}

// Get returns a copy of a set by name.
func (r *Registry) Get(name string) (Set, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.byName[name]
	if s == nil {
		return Set{}, false
	}
	return s.clone(), true
}

// Names returns every set name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of published sets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// List returns matching sets, sorted by name.
func (r *Registry) List(f ListFilter) []Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tagged strset
	if len(f.TagsAny) > 0 {
		tagged = make(strset)
		for _, t := range f.TagsAny {
			for name := range r.byTag[t] {
				tagged.add(name)
			}
		}
	}
	search := strings.TrimSpace(f.TextSearch)

	out := make([]Set, 0, len(r.byName))
	for name, s := range r.byName {
		if f.Prefix != "" && !strings.HasPrefix(name, f.Prefix) {
			continue
		}
		if tagged != nil && !tagged.has(name) {
			continue
		}
		if search != "" && !slices.ContainsFunc(s.Schema, func(m MetricSchema) bool {
			return strings.Contains(m.Name, search)
		}) {
			continue
		}
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Flush writes the snapshot regardless of throttling.
func (r *Registry) Flush() error {
	if r.SnapshotPath == "" {
		return nil
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	if err := r.saveSnapshot(r.SnapshotPath); err != nil {
		return err
	}
	r.lastSave = now()
	return nil
}

// maybeSave performs a best-effort snapshot write if a path is configured
// and the last write is older than the save interval.
func (r *Registry) maybeSave() {
	if r.SnapshotPath == "" {
		return
	}
	r.saveMu.Lock()
	due := now().Sub(r.lastSave) >= r.saveInterval
	r.saveMu.Unlock()
	if due {
		r.save()
	}
}

func (r *Registry) save() {
	if err := r.Flush(); err != nil {
		r.log.Warn().Err(err).Str("path", r.SnapshotPath).Msg("registry snapshot failed")
	}
}

func (s *Set) clone() Set {
	cp := *s
	cp.Schema = slices.Clone(s.Schema)
	cp.Values = slices.Clone(s.Values)
	cp.Tags = slices.Clone(s.Tags)
	return cp
}

// --- helpers ---

type strset map[string]struct{}

func (s strset) add(v string) {
	s[v] = struct{}{}
}

func (s strset) has(v string) bool {
	_, ok := s[v]
	return ok
}

func now() time.Time {
	return time.Now().UTC()
}

func norm(xs []string) []string {
	out := make([]string, 0, len(xs))
	seen := make(strset, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" || seen.has(x) {
			continue
		}
		seen.add(x)
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

func errNotFound(name string) error {
	return fmt.Errorf("set %q: %w", name, ErrNotFound)
}
