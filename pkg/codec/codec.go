// Package codec converts nested host structures (sequences, keyed reference
// maps with cross-references) into flat link sets and back. It is a pure
// layer over the Links facade: every store interaction is a create, update,
// delete, or each call, and the codec holds no storage state of its own.
//
// Canonical encoding:
//
//   - The codec bootstraps two marker links, identified as the first two
//     self-referential links (id: id id) in creation order. The first is the
//     nil marker, the second the number marker.
//   - A scalar n is the link (num n).
//   - The empty sequence is a fresh link (nil nil).
//   - A sequence x1..xn is a right-nested chain of cells: the cell for xi is
//     (enc(xi) next-cell), and the last cell's target is the nil marker.
//   - A reference to a keyed entry is the entry's reserved id, used in place
//     of an inline encoding.
//
// Reference maps encode in two phases: one placeholder link is created per
// key first (reserving its id), then each entry's links are written with the
// reserved ids standing in for cross-references, and each reserved link is
// finalized by update. Reserving before resolving is what makes cyclic and
// forward references expressible: an entry can never reference an id that
// has not been minted yet.
//
// Encode and decode walk with explicit work stacks, so depth is bounded by
// memory rather than goroutine stack.
//
// See docs/ARCHITECTURE.md § Codec.
package codec

import (
	"fmt"
	"sort"

	"github.com/linkforge/doublets/pkg/links"
)

// Codec encodes and decodes values against one store, via its facade.
type Codec struct {
	links links.Links
	nilID links.LinkID
	numID links.LinkID
}

// New ensures the marker links exist and returns a codec. Markers are
// discovered as the first two self-referential links in creation order, so
// a codec must bootstrap its markers before other self-loops are created on
// the same store.
func New(l links.Links) (*Codec, error) {
	var loops []links.LinkID
	err := l.Each(links.All(), func(lk links.Link) links.Decision {
		if lk.Source == lk.ID && lk.Target == lk.ID {
			loops = append(loops, lk.ID)
			if len(loops) == 2 {
				return links.Break
			}
		}
		return links.Continue
	})
	if err != nil {
		return nil, fmt.Errorf("discover markers: %w", err)
	}

	for len(loops) < 2 {
		id, err := l.Create(links.Sub(links.None, links.None))
		if err != nil {
			return nil, fmt.Errorf("create marker: %w", err)
		}
		if _, err := l.Update(links.ByID(id), links.Sub(id, id)); err != nil {
			return nil, fmt.Errorf("finalize marker: %w", err)
		}
		loops = append(loops, id)
	}

	return &Codec{links: l, nilID: loops[0], numID: loops[1]}, nil
}

// EncodeSequence encodes an ordered sequence and returns its root id.
// References are not resolvable outside a reference map and fail with
// ErrUnresolvedReference.
func (c *Codec) EncodeSequence(items ...*Value) (links.LinkID, error) {
	return c.encode(Sequence(items...), nil, nil)
}

// Encode encodes a single number or sequence value and returns its root id.
func (c *Codec) Encode(v *Value) (links.LinkID, error) {
	return c.encode(v, nil, nil)
}

// Decode reconstructs the value rooted at id.
func (c *Codec) Decode(id links.LinkID) (*Value, error) {
	return c.decode(id, nil)
}

// DecodeSequence reconstructs the sequence rooted at id.
func (c *Codec) DecodeSequence(id links.LinkID) ([]*Value, error) {
	v, err := c.decode(id, nil)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindSequence {
		return nil, fmt.Errorf("link %d does not encode a sequence: %w", id, links.ErrInvalidArgument)
	}
	return v.Items, nil
}

// EncodeRefMap encodes a keyed map whose entries may reference each other,
// including self- and mutual references. It returns the reserved root id per
// key. Entry values must be numbers or sequences; a reference to a key
// absent from entries fails with ErrUnresolvedReference. On failure the
// reserved placeholders and any links already written for earlier entries
// are deleted best-effort.
func (c *Codec) EncodeRefMap(entries map[string]*Value) (map[string]links.LinkID, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		if entries[k] == nil {
			return nil, fmt.Errorf("entry %q is nil: %w", k, links.ErrInvalidArgument)
		}
		if entries[k].Kind == KindRef {
			return nil, fmt.Errorf("entry %q is a bare reference: %w", k, links.ErrInvalidArgument)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Phase one: mint one placeholder per key.
	resolve := make(map[string]links.LinkID, len(keys))
	for _, k := range keys {
		id, err := c.links.Create(links.Sub(links.None, links.None))
		if err != nil {
			c.discard(resolve, nil)
			return nil, fmt.Errorf("reserve %q: %w", k, err)
		}
		resolve[k] = id
	}

	// Phase two: encode each entry into its reserved link. Every link
	// minted here is tracked so a failed entry does not strand the cells
	// already written for earlier entries.
	var created []links.LinkID
	for _, k := range keys {
		if err := c.finalize(resolve[k], entries[k], resolve, &created); err != nil {
			c.discard(resolve, created)
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
	}

	return resolve, nil
}

// DecodeRefMap reconstructs every entry of an encoded reference map from its
// key-to-root mapping. A decoded element whose id is another entry's root
// becomes a Ref to that key.
func (c *Codec) DecodeRefMap(roots map[string]links.LinkID) (map[string]*Value, error) {
	refs := make(map[links.LinkID]string, len(roots))
	for k, id := range roots {
		refs[id] = k
	}

	out := make(map[string]*Value, len(roots))
	for k, id := range roots {
		v, err := c.decode(id, refs)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// finalize writes v's encoding into the already-reserved link rid. Links
// created along the way are appended to created when it is non-nil.
func (c *Codec) finalize(rid links.LinkID, v *Value, resolve map[string]links.LinkID, created *[]links.LinkID) error {
	switch v.Kind {
	case KindNumber:
		_, err := c.links.Update(links.ByID(rid), links.Sub(c.numID, links.LinkID(v.Num)))
		return err
	case KindSequence:
		if len(v.Items) == 0 {
			_, err := c.links.Update(links.ByID(rid), links.Sub(c.nilID, c.nilID))
			return err
		}
		head, err := c.encode(v.Items[0], resolve, created)
		if err != nil {
			return err
		}
		tail := c.nilID
		for i := len(v.Items) - 1; i >= 1; i-- {
			id, err := c.encode(v.Items[i], resolve, created)
			if err != nil {
				return err
			}
			cell, err := c.create(links.Sub(id, tail), created)
			if err != nil {
				return err
			}
			tail = cell
		}
		_, err = c.links.Update(links.ByID(rid), links.Sub(head, tail))
		return err
	default:
		return fmt.Errorf("cannot finalize kind %d: %w", v.Kind, links.ErrInvalidArgument)
	}
}

// create mints one link and records its id in created when non-nil.
func (c *Codec) create(sub links.Substitution, created *[]links.LinkID) (links.LinkID, error) {
	id, err := c.links.Create(sub)
	if err != nil {
		return links.None, err
	}
	if created != nil {
		*created = append(*created, id)
	}
	return id, nil
}

// discard best-effort deletes the reserved placeholders and any links minted
// while encoding, after a failed encode.
func (c *Codec) discard(resolve map[string]links.LinkID, created []links.LinkID) {
	for _, id := range created {
		_, _ = c.links.Delete(links.ByID(id))
	}
	for _, id := range resolve {
		_, _ = c.links.Delete(links.ByID(id))
	}
}

// eframe is one pending value on the encode work stack.
type eframe struct {
	v   *Value
	ids []links.LinkID
	idx int
}

// encode writes v as links and returns the root id. Iterative post-order:
// children are encoded before their sequence cell chain is chained up.
// Links created are appended to created when it is non-nil.
func (c *Codec) encode(v *Value, resolve map[string]links.LinkID, created *[]links.LinkID) (links.LinkID, error) {
	if v == nil {
		return links.None, fmt.Errorf("nil value: %w", links.ErrInvalidArgument)
	}

	var root links.LinkID
	stack := []*eframe{{v: v}}

	deliver := func(id links.LinkID) {
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			root = id
			return
		}
		parent := stack[len(stack)-1]
		parent.ids = append(parent.ids, id)
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		switch f.v.Kind {
		case KindNumber:
			l, err := c.create(links.Sub(c.numID, links.LinkID(f.v.Num)), created)
			if err != nil {
				return links.None, err
			}
			deliver(l)

		case KindRef:
			id, ok := resolve[f.v.Key]
			if !ok {
				return links.None, fmt.Errorf("reference to %q: %w", f.v.Key, links.ErrUnresolvedReference)
			}
			deliver(id)

		case KindSequence:
			if f.idx < len(f.v.Items) {
				child := f.v.Items[f.idx]
				if child == nil {
					return links.None, fmt.Errorf("nil sequence item: %w", links.ErrInvalidArgument)
				}
				f.idx++
				stack = append(stack, &eframe{v: child})
				continue
			}
			if len(f.ids) == 0 {
				l, err := c.create(links.Sub(c.nilID, c.nilID), created)
				if err != nil {
					return links.None, err
				}
				deliver(l)
				continue
			}
			tail := c.nilID
			for i := len(f.ids) - 1; i >= 0; i-- {
				cell, err := c.create(links.Sub(f.ids[i], tail), created)
				if err != nil {
					return links.None, err
				}
				tail = cell
			}
			deliver(tail)

		default:
			return links.None, fmt.Errorf("unknown value kind %d: %w", f.v.Kind, links.ErrInvalidArgument)
		}
	}

	return root, nil
}

// dframe is one partially-decoded sequence on the decode work stack.
type dframe struct {
	heads []links.LinkID
	idx   int
	out   *Value
}

// decode reconstructs the value rooted at id. refs maps reference-map root
// ids to their keys; a non-root occurrence of such an id decodes as a Ref
// instead of descending, which is also what keeps cyclic structures finite.
func (c *Codec) decode(root links.LinkID, refs map[links.LinkID]string) (*Value, error) {
	rootVal := &Value{}
	var stack []*dframe

	// seen guards against malformed stores whose chains loop. The encoder
	// never shares a cell between two sequences, so a revisit is corruption.
	seen := make(map[links.LinkID]bool)

	step := func(id links.LinkID, out *Value, isRoot bool) error {
		if !isRoot {
			if key, ok := refs[id]; ok {
				*out = Value{Kind: KindRef, Key: key}
				return nil
			}
		}
		if id == c.nilID || id == c.numID {
			return fmt.Errorf("link %d is a codec marker: %w", id, links.ErrInvalidArgument)
		}

		l, err := c.read(id)
		if err != nil {
			return err
		}
		if l.Source == c.numID {
			*out = Value{Kind: KindNumber, Num: uint64(l.Target)}
			return nil
		}
		if l.Source == c.nilID && l.Target == c.nilID {
			*out = Value{Kind: KindSequence, Items: []*Value{}}
			return nil
		}

		// Cons chain: collect element head ids up front.
		var heads []links.LinkID
		cur := l
		for {
			if seen[cur.ID] {
				return fmt.Errorf("sequence cell %d revisited: %w", cur.ID, links.ErrInvalidArgument)
			}
			seen[cur.ID] = true
			heads = append(heads, cur.Source)
			if cur.Target == c.nilID {
				break
			}
			next, err := c.read(cur.Target)
			if err != nil {
				return err
			}
			if next.Source == c.numID || (next.Source == c.nilID && next.Target == c.nilID) {
				return fmt.Errorf("link %d is not a sequence cell: %w", next.ID, links.ErrInvalidArgument)
			}
			cur = next
		}

		items := make([]*Value, len(heads))
		for i := range items {
			items[i] = &Value{}
		}
		*out = Value{Kind: KindSequence, Items: items}
		stack = append(stack, &dframe{heads: heads, out: out})
		return nil
	}

	if err := step(root, rootVal, true); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.idx >= len(f.heads) {
			stack = stack[:len(stack)-1]
			continue
		}
		i := f.idx
		f.idx++
		if err := step(f.heads[i], f.out.Items[i], false); err != nil {
			return nil, err
		}
	}
	return rootVal, nil
}

// read fetches one link through the facade's traversal primitive.
func (c *Codec) read(id links.LinkID) (links.Link, error) {
	var found *links.Link
	err := c.links.Each(links.ByID(id), func(l links.Link) links.Decision {
		cp := l
		found = &cp
		return links.Break
	})
	if err != nil {
		return links.Link{}, err
	}
	if found == nil {
		return links.Link{}, fmt.Errorf("read %d: %w", id, links.ErrNotFound)
	}
	return *found, nil
}
