// Restriction matching over a store scan.
package engine

import (
	"errors"

	"github.com/linkforge/doublets/pkg/links"
)

// scan visits every link satisfying r in the store's scan order, stopping
// early when visit returns false. The match is a pure filter: a pinned id
// short-circuits to a point lookup instead of a full scan.
func scan(store links.Store, r links.Restriction, visit func(links.Link) bool) error {
	if r.ID.Exact {
		l, err := store.Read(r.ID.ID)
		if errors.Is(err, links.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if r.Matches(l) {
			visit(l)
		}
		return nil
	}

	return store.Scan(func(l links.Link) bool {
		if !r.Matches(l) {
			return true
		}
		return visit(l)
	})
}

// collect materializes every match of r.
func collect(store links.Store, r links.Restriction) ([]links.Link, error) {
	var matched []links.Link
	err := scan(store, r, func(l links.Link) bool {
		matched = append(matched, l)
		return true
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}
