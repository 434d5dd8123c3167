package links

import "errors"

// Standard errors for store and facade operations. Callers test with
// errors.Is; implementations wrap these with fmt.Errorf("...: %w", ...) to
// add context.
var (
	// ErrNotFound reports an id that was never created or has been deleted.
	ErrNotFound = errors.New("link not found")

	// ErrInvalidArgument reports a malformed restriction or substitution,
	// such as a substitution with fewer than two elements.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAmbiguousMatch reports a single-target mutation whose restriction
	// matched more than one link without pinning an id.
	ErrAmbiguousMatch = errors.New("restriction matches more than one link")

	// ErrStoreUnavailable reports that the backing medium is unreachable or
	// closed, as distinct from a link that does not exist.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnresolvedReference reports a codec cross-reference to a key absent
	// from the entry set.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrParse reports malformed notation text.
	ErrParse = errors.New("malformed notation")
)
