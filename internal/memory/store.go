// Package memory implements an in-process, map-backed link store. It backs
// ephemeral runs and tests; the sqlite backend is the durable counterpart.
// See docs/ARCHITECTURE.md § Storage Backends.
package memory

import (
	"fmt"
	"sync"

	"github.com/linkforge/doublets/pkg/links"
)

var _ links.Store = (*Store)(nil)

type pair struct {
	source links.LinkID
	target links.LinkID
}

// Store holds links in memory. The mutex linearizes mutations per store,
// which trivially satisfies the per-id linearization contract; the next-id
// counter only advances, so ids are never reused across deletions.
type Store struct {
	mu     sync.RWMutex
	next   links.LinkID
	pairs  map[links.LinkID]pair
	order  []links.LinkID
	closed bool
}

// NewStore returns an empty memory store.
func NewStore() *Store {
	return &Store{
		pairs: make(map[links.LinkID]pair),
	}
}

// Create allocates the next monotonic id and records the pair.
func (s *Store) Create(source, target links.LinkID) (links.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return links.Link{}, fmt.Errorf("create: %w", links.ErrStoreUnavailable)
	}

	s.next++
	id := s.next
	s.pairs[id] = pair{source: source, target: target}
	s.order = append(s.order, id)

	return links.Link{ID: id, Source: source, Target: target}, nil
}

// Read returns the link with the given id.
func (s *Store) Read(id links.LinkID) (links.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return links.Link{}, fmt.Errorf("read: %w", links.ErrStoreUnavailable)
	}

	p, ok := s.pairs[id]
	if !ok {
		return links.Link{}, fmt.Errorf("read %d: %w", id, links.ErrNotFound)
	}
	return links.Link{ID: id, Source: p.source, Target: p.target}, nil
}

// Scan visits links in creation order. The id sequence is snapshotted up
// front; each link's value is read individually, so a link observed reflects
// a value it held at some point during the scan. Deleted ids are skipped.
func (s *Store) Scan(visit func(links.Link) bool) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("scan: %w", links.ErrStoreUnavailable)
	}
	ids := make([]links.LinkID, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	for _, id := range ids {
		s.mu.RLock()
		p, ok := s.pairs[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		if !visit(links.Link{ID: id, Source: p.source, Target: p.target}) {
			return nil
		}
	}
	return nil
}

// Update overwrites the pair in place; the id is fixed.
func (s *Store) Update(id, source, target links.LinkID) (links.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return links.Link{}, fmt.Errorf("update: %w", links.ErrStoreUnavailable)
	}

	if _, ok := s.pairs[id]; !ok {
		return links.Link{}, fmt.Errorf("update %d: %w", id, links.ErrNotFound)
	}
	s.pairs[id] = pair{source: source, target: target}

	return links.Link{ID: id, Source: source, Target: target}, nil
}

// Delete removes the link. The id stays burned: the counter never moves
// backwards, and the creation-order slice keeps a tombstone that Scan skips.
func (s *Store) Delete(id links.LinkID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("delete: %w", links.ErrStoreUnavailable)
	}

	if _, ok := s.pairs[id]; !ok {
		return fmt.Errorf("delete %d: %w", id, links.ErrNotFound)
	}
	delete(s.pairs, id)
	return nil
}

// Close marks the store unavailable. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
