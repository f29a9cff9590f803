// Package state holds the canonical session, settings, and progress state.
//
// The store keeps a single JSON document addressed by dot-delimited paths
// ("progress.xp"). Writes that do not change the encoded value are silent, so
// redundant sets never cause notification storms.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ChangeType distinguishes ordinary writes from whole-store resets.
type ChangeType int

const (
	// ChangeSet indicates a single path was written.
	ChangeSet ChangeType = iota

	// ChangeReset indicates the whole store was replaced.
	ChangeReset
)

// Change describes one store mutation.
type Change struct {
	Path string
	Type ChangeType
	Old  any
	New  any
}

// Observer receives store changes.
type Observer func(change Change)

type watcher struct {
	id uint64
	fn Observer
}

// Store is a path-addressed reactive key-value tree.
type Store struct {
	mu           sync.Mutex
	doc          []byte
	nextID       uint64
	anyWatchers  []watcher
	pathWatchers map[string][]watcher
}

// New returns a store seeded with the given top-level state. A nil initial
// state yields an empty tree.
func New(initial map[string]any) *Store {
	s := &Store{
		doc:          []byte("{}"),
		pathWatchers: map[string][]watcher{},
	}
	if initial != nil {
		if enc, err := json.Marshal(initial); err == nil {
			s.doc = enc
		}
	}
	return s
}

// Get returns the value at path, or the whole tree when path is empty.
// A partially missing path returns nil rather than an error.
func (s *Store) Get(path string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		var tree map[string]any
		if err := json.Unmarshal(s.doc, &tree); err != nil {
			return map[string]any{}
		}
		return tree
	}
	res := gjson.GetBytes(s.doc, path)
	if !res.Exists() {
		return nil
	}
	return res.Value()
}

// Set writes value at path, creating intermediate containers as needed.
// When the encoded value is unchanged the write is a no-op and no observer
// fires. Returns true when a change was applied.
func (s *Store) Set(path string, value any) bool {
	if path == "" {
		return false
	}
	s.mu.Lock()
	newEnc, err := json.Marshal(value)
	if err != nil {
		s.mu.Unlock()
		return false
	}
	existing := gjson.GetBytes(s.doc, path)
	var old any
	if existing.Exists() {
		old = existing.Value()
		oldEnc, err := json.Marshal(old)
		if err == nil && bytes.Equal(oldEnc, newEnc) {
			s.mu.Unlock()
			return false
		}
	}
	doc, err := sjson.SetRawBytes(s.doc, path, newEnc)
	if err != nil {
		s.mu.Unlock()
		return false
	}
	s.doc = doc
	change := Change{Path: path, Type: ChangeSet, Old: old, New: value}
	targets := s.watchersFor(path)
	s.mu.Unlock()

	for _, w := range targets {
		w.fn(change)
	}
	return true
}

// Update applies multiple sets in deterministic (sorted-path) order. Each
// set notifies independently, exactly as if issued on its own.
func (s *Store) Update(values map[string]any) {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		s.Set(p, values[p])
	}
}

// Watch registers a path-specific observer and returns an unsubscribe
// function.
func (s *Store) Watch(path string, fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.pathWatchers[path] = append(s.pathWatchers[path], watcher{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.pathWatchers[path]
		for i, w := range list {
			if w.id == id {
				s.pathWatchers[path] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// WatchAny registers an observer for every change, including resets.
func (s *Store) WatchAny(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.anyWatchers = append(s.anyWatchers, watcher{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.anyWatchers {
			if w.id == id {
				s.anyWatchers = append(s.anyWatchers[:i:i], s.anyWatchers[i+1:]...)
				return
			}
		}
	}
}

// Reset replaces all top-level keys with newState and fires a single reset
// notification instead of per-field changes.
func (s *Store) Reset(newState map[string]any) error {
	if newState == nil {
		newState = map[string]any{}
	}
	enc, err := json.Marshal(newState)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	s.mu.Lock()
	var old any
	var oldTree map[string]any
	if err := json.Unmarshal(s.doc, &oldTree); err == nil {
		old = oldTree
	}
	s.doc = enc
	change := Change{Type: ChangeReset, Old: old, New: newState}
	targets := make([]watcher, len(s.anyWatchers))
	copy(targets, s.anyWatchers)
	s.mu.Unlock()

	for _, w := range targets {
		w.fn(change)
	}
	return nil
}

// watchersFor snapshots the observers for one set: wildcard watchers first,
// then the path-specific ones, preserving registration order within each.
func (s *Store) watchersFor(path string) []watcher {
	out := make([]watcher, 0, len(s.anyWatchers)+len(s.pathWatchers[path]))
	out = append(out, s.anyWatchers...)
	out = append(out, s.pathWatchers[path]...)
	return out
}
