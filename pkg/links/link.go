// Link entity for the doublets associative store.
// See docs/ARCHITECTURE.md § Data Model.
package links

// LinkID identifies a link. IDs are assigned monotonically starting at 1 and
// are never reused within a store's lifetime, even across deletions.
type LinkID uint64

// None is the reserved terminal id. A link whose source or target is None
// points at nothing rather than at another link.
const None LinkID = 0

// Link is a doublet: an identified pair of link references. Source and
// Target may reference ids that do not (or no longer) exist; the store does
// not enforce referential existence. None is always a valid reference.
type Link struct {
	// ID is unique and immutable once assigned.
	ID LinkID `json:"id"`

	// Source is the left reference.
	Source LinkID `json:"source"`

	// Target is the right reference.
	Target LinkID `json:"target"`
}
