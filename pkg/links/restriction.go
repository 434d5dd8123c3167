// Restriction and Substitution tuples for restriction-driven queries.
// See docs/ARCHITECTURE.md § Query Algebra.
package links

// Slot is one position of a Restriction: either a wildcard matching any id,
// or an exact id. A tagged variant is used instead of a magic numeric
// sentinel so that no legitimate id value collides with "any".
type Slot struct {
	ID    LinkID
	Exact bool
}

// Any is the wildcard slot. The zero Slot is Any.
var Any = Slot{}

// Exactly returns a slot matching only the given id.
func Exactly(id LinkID) Slot {
	return Slot{ID: id, Exact: true}
}

// Matches reports whether the slot accepts id.
func (s Slot) Matches(id LinkID) bool {
	return !s.Exact || s.ID == id
}

// Restriction is a partial-match query over (id, source, target). The zero
// Restriction matches every link.
type Restriction struct {
	ID     Slot
	Source Slot
	Target Slot
}

// All returns the restriction matching every link.
func All() Restriction {
	return Restriction{}
}

// ByID returns a restriction pinning the id slot.
func ByID(id LinkID) Restriction {
	return Restriction{ID: Exactly(id)}
}

// BySource returns a restriction pinning the source slot.
func BySource(source LinkID) Restriction {
	return Restriction{Source: Exactly(source)}
}

// ByTarget returns a restriction pinning the target slot.
func ByTarget(target LinkID) Restriction {
	return Restriction{Target: Exactly(target)}
}

// Matches reports whether l satisfies every slot of the restriction.
func (r Restriction) Matches(l Link) bool {
	return r.ID.Matches(l.ID) && r.Source.Matches(l.Source) && r.Target.Matches(l.Target)
}

// Substitution is the ordered value tuple of a mutation. For create it is
// (source, target); for update it overwrites the matched link's fields.
type Substitution []LinkID

// Sub builds a substitution from values.
func Sub(values ...LinkID) Substitution {
	return Substitution(values)
}

// Validate checks the minimum arity of two elements.
func (s Substitution) Validate() error {
	if len(s) < 2 {
		return ErrInvalidArgument
	}
	return nil
}

// Source returns the first element. Valid only after Validate.
func (s Substitution) Source() LinkID { return s[0] }

// Target returns the second element. Valid only after Validate.
func (s Substitution) Target() LinkID { return s[1] }
