// Value model for the recursive structure codec.
package codec

// Kind discriminates the value variants the codec can encode.
type Kind int

const (
	// KindNumber is a scalar natural number.
	KindNumber Kind = iota

	// KindSequence is a finite ordered sequence of values.
	KindSequence

	// KindRef is a by-key reference to another entry of a reference map.
	KindRef
)

// Value is a nested host structure: a number, a sequence, or a reference to
// another keyed entry. Sequences may nest arbitrarily deep; references may
// form cycles across reference-map entries.
type Value struct {
	Kind  Kind
	Num   uint64
	Items []*Value
	Key   string
}

// Number returns a scalar value.
func Number(n uint64) *Value {
	return &Value{Kind: KindNumber, Num: n}
}

// Sequence returns an ordered sequence value.
func Sequence(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Kind: KindSequence, Items: items}
}

// Ref returns a reference to the reference-map entry named key.
func Ref(key string) *Value {
	return &Value{Kind: KindRef, Key: key}
}

// Equal reports deep structural equality.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindRef:
		return v.Key == o.Key
	case KindSequence:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
