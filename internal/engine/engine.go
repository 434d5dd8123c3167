// Package engine implements the restriction-driven Links facade over any
// links.Store. Count, Each, Create, Update, and Delete are the uniform
// operations all higher behavior is built from.
// See docs/ARCHITECTURE.md § Engine.
package engine

import (
	"fmt"

	"github.com/linkforge/doublets/pkg/links"
)

var _ links.Links = (*Engine)(nil)

// Engine evaluates restrictions against a store and applies substitutions
// through its atomic CRUD. It holds no state besides the store handle.
type Engine struct {
	store links.Store
}

// New returns an engine over the given store.
func New(store links.Store) *Engine {
	return &Engine{store: store}
}

// Count returns the cardinality of the match set.
func (e *Engine) Count(r links.Restriction) (uint64, error) {
	var n uint64
	err := scan(e.store, r, func(links.Link) bool {
		n++
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Each invokes visit for every match, stopping early on Break.
func (e *Engine) Each(r links.Restriction, visit links.Visitor) error {
	return scan(e.store, r, func(l links.Link) bool {
		return visit(l) == links.Continue
	})
}

// Create allocates a new link from the substitution.
func (e *Engine) Create(sub links.Substitution) (links.LinkID, error) {
	if err := sub.Validate(); err != nil {
		return links.None, fmt.Errorf("create needs a (source, target) substitution: %w", err)
	}
	l, err := e.store.Create(sub.Source(), sub.Target())
	if err != nil {
		return links.None, err
	}
	return l.ID, nil
}

// Update overwrites the single matched link with the substitution.
func (e *Engine) Update(r links.Restriction, sub links.Substitution) (links.LinkID, error) {
	if err := sub.Validate(); err != nil {
		return links.None, fmt.Errorf("update needs a (source, target) substitution: %w", err)
	}
	l, err := e.resolveOne(r)
	if err != nil {
		return links.None, err
	}
	if _, err := e.store.Update(l.ID, sub.Source(), sub.Target()); err != nil {
		return links.None, err
	}
	return l.ID, nil
}

// Delete removes the single matched link.
func (e *Engine) Delete(r links.Restriction) (links.LinkID, error) {
	l, err := e.resolveOne(r)
	if err != nil {
		return links.None, err
	}
	if err := e.store.Delete(l.ID); err != nil {
		return links.None, err
	}
	return l.ID, nil
}

// UpdateAll overwrites every matched link. Matches are materialized before
// the first write so the scan never observes its own mutations.
func (e *Engine) UpdateAll(r links.Restriction, sub links.Substitution) (uint64, error) {
	if err := sub.Validate(); err != nil {
		return 0, fmt.Errorf("update needs a (source, target) substitution: %w", err)
	}
	matched, err := collect(e.store, r)
	if err != nil {
		return 0, err
	}
	for _, l := range matched {
		if _, err := e.store.Update(l.ID, sub.Source(), sub.Target()); err != nil {
			return 0, err
		}
	}
	return uint64(len(matched)), nil
}

// DeleteAll removes every matched link.
func (e *Engine) DeleteAll(r links.Restriction) (uint64, error) {
	matched, err := collect(e.store, r)
	if err != nil {
		return 0, err
	}
	for _, l := range matched {
		if err := e.store.Delete(l.ID); err != nil {
			return 0, err
		}
	}
	return uint64(len(matched)), nil
}

// resolveOne applies the single-match policy: a pinned id resolves by point
// lookup (the remaining slots still must match); otherwise the restriction
// must match exactly one link. Zero matches is ErrNotFound, several without
// a pinned id is ErrAmbiguousMatch.
func (e *Engine) resolveOne(r links.Restriction) (links.Link, error) {
	if r.ID.Exact {
		l, err := e.store.Read(r.ID.ID)
		if err != nil {
			return links.Link{}, err
		}
		if !r.Matches(l) {
			return links.Link{}, fmt.Errorf("link %d does not match restriction: %w", l.ID, links.ErrNotFound)
		}
		return l, nil
	}

	var matched []links.Link
	err := scan(e.store, r, func(l links.Link) bool {
		matched = append(matched, l)
		return len(matched) < 2
	})
	if err != nil {
		return links.Link{}, err
	}
	switch len(matched) {
	case 0:
		return links.Link{}, fmt.Errorf("no link matches restriction: %w", links.ErrNotFound)
	case 1:
		return matched[0], nil
	default:
		return links.Link{}, fmt.Errorf("pin an id or use a bulk operation: %w", links.ErrAmbiguousMatch)
	}
}
