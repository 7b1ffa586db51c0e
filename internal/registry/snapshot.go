package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot schema versioning for forward-compatibility.
const snapshotVersion = 1

type snapshot struct {
	Version int   `json:"version"`
	Sets    []Set `json:"sets"`
	Created int64 `json:"created_unix"`
}

func (r *Registry) loadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("snapshot %s: unsupported version %d", path, s.Version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName = make(map[string]*Set)
	r.byTag = make(map[string]strset)
	for i := range s.Sets {
		set := s.Sets[i]
		if len(set.Values) != len(set.Schema) {
			r.log.Warn().Str("set", set.Name).Msg("dropping snapshot entry with mismatched values")
			continue
		}
		r.byName[set.Name] = &set
		for _, t := range set.Tags {
			if _, ok := r.byTag[t]; !ok {
				r.byTag[t] = make(strset)
			}
			r.byTag[t].add(set.Name)
		}
	}
	return nil
}

func (r *Registry) saveSnapshot(path string) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	r.mu.RLock()
	s := snapshot{
		Version: snapshotVersion,
		Created: now().Unix(),
	}
	s.Sets = make([]Set, 0, len(r.byName))
	for _, set := range r.byName {
		s.Sets = append(s.Sets, set.clone())
	}
	r.mu.RUnlock()

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
