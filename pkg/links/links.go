package links

// Decision is the control signal a Visitor returns to Each.
type Decision int

const (
	// Continue requests the next match.
	Continue Decision = iota

	// Break stops the traversal; no further matches are produced.
	Break
)

// Visitor receives one matched link per call during Each.
type Visitor func(Link) Decision

// Links is the uniform restriction-driven facade over a store. All higher
// behavior (codec, CLI, interchange) is expressed through these operations.
//
// Single-match policy: Update and Delete act on exactly one link. The
// restriction must either pin an id or match exactly one link; a restriction
// matching several links without a pinned id fails with ErrAmbiguousMatch,
// and a restriction matching none fails with ErrNotFound. Multi-target
// intent is explicit via UpdateAll and DeleteAll.
type Links interface {
	// Count returns the cardinality of the match set. It always equals the
	// number of links Each would visit for the same restriction.
	Count(r Restriction) (uint64, error)

	// Each invokes visit for every matched link and stops early on Break.
	Each(r Restriction, visit Visitor) error

	// Create allocates a new link from a (source, target, ...) substitution
	// and returns its id. Substitutions with fewer than two elements fail
	// with ErrInvalidArgument.
	Create(sub Substitution) (LinkID, error)

	// Update overwrites the single matched link with the substitution and
	// returns the affected id.
	Update(r Restriction, sub Substitution) (LinkID, error)

	// Delete removes the single matched link and returns the removed id.
	Delete(r Restriction) (LinkID, error)

	// UpdateAll overwrites every matched link and returns the count.
	UpdateAll(r Restriction, sub Substitution) (uint64, error)

	// DeleteAll removes every matched link and returns the count.
	DeleteAll(r Restriction) (uint64, error)
}
