package links

// Store is the capability interface over a backing medium for links. The
// engine, codec, and CLI are written against Store so that embedded and
// external-process backends are interchangeable.
//
// Implementations guarantee monotonic allocation: Create hands out a unique,
// previously-unused id even under concurrent calls, and an id freed by
// Delete is never reissued. Operations on the same id are linearized; a
// concurrent reader never observes a torn write.
//
// Operations against an unavailable medium fail with ErrStoreUnavailable,
// distinct from ErrNotFound.
type Store interface {
	// Create allocates a fresh id and persists (id, source, target).
	Create(source, target LinkID) (Link, error)

	// Read returns the link with the given id, or ErrNotFound.
	Read(id LinkID) (Link, error)

	// Scan visits every link in creation order. Returning false from visit
	// stops the scan early. Each link observed reflects a value it held at
	// some point during the scan (read-committed per link); no snapshot
	// isolation across links is implied.
	Scan(visit func(Link) bool) error

	// Update overwrites source and target of an existing id in place.
	// The id itself never changes. Returns ErrNotFound for an id that was
	// never created or has been deleted.
	Update(id, source, target LinkID) (Link, error)

	// Delete removes the link. The id is never reused. Dependent links keep
	// the now-dangling reference; it resolves to ErrNotFound on next Read.
	Delete(id LinkID) error

	// Close releases the backing medium. Further operations fail with
	// ErrStoreUnavailable.
	Close() error
}

// ReadAll materializes every link in creation order.
func ReadAll(s Store) ([]Link, error) {
	var all []Link
	err := s.Scan(func(l Link) bool {
		all = append(all, l)
		return true
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
