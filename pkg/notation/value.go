// Textual form for decoded codec values: numbers, parenthesized sequences,
// and bare-word references. Pure text transform; no storage involved.
package notation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/linkforge/doublets/pkg/codec"
	"github.com/linkforge/doublets/pkg/links"
)

// FormatValue renders a decoded value: a number as digits, a reference as
// its bare key, and a sequence as its items space-separated in parentheses,
// e.g. (1 (2 3) other).
func FormatValue(v *codec.Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

// writeValue walks with an explicit stack; sentinel nil frames emit the
// closing parenthesis of the sequence pushed beneath them.
func writeValue(b *strings.Builder, v *codec.Value) {
	type frame struct {
		v     *codec.Value
		close bool
	}
	stack := []frame{{v: v}}
	needSep := false

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.close {
			b.WriteByte(')')
			needSep = true
			continue
		}
		if needSep {
			b.WriteByte(' ')
		}
		switch f.v.Kind {
		case codec.KindNumber:
			b.WriteString(strconv.FormatUint(f.v.Num, 10))
			needSep = true
		case codec.KindRef:
			b.WriteString(f.v.Key)
			needSep = true
		case codec.KindSequence:
			b.WriteByte('(')
			needSep = false
			stack = append(stack, frame{close: true})
			for i := len(f.v.Items) - 1; i >= 0; i-- {
				stack = append(stack, frame{v: f.v.Items[i]})
			}
		}
	}
}

// ParseValue parses the textual value form back into a codec value.
func ParseValue(text string) (*codec.Value, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty input", links.ErrParse)
	}

	// Explicit stack of open sequences; nil top means a bare value.
	var open []*codec.Value
	var done *codec.Value

	push := func(v *codec.Value) error {
		if done != nil {
			return fmt.Errorf("%w: trailing content after value", links.ErrParse)
		}
		if len(open) == 0 {
			done = v
			return nil
		}
		top := open[len(open)-1]
		top.Items = append(top.Items, v)
		return nil
	}

	for _, tok := range toks {
		switch tok {
		case "(":
			seq := codec.Sequence()
			if done != nil {
				return nil, fmt.Errorf("%w: trailing content after value", links.ErrParse)
			}
			open = append(open, seq)
		case ")":
			if len(open) == 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", links.ErrParse)
			}
			seq := open[len(open)-1]
			open = open[:len(open)-1]
			if err := push(seq); err != nil {
				return nil, err
			}
		default:
			var v *codec.Value
			if n, nerr := strconv.ParseUint(tok, 10, 64); nerr == nil {
				v = codec.Number(n)
			} else {
				v = codec.Ref(tok)
			}
			if err := push(v); err != nil {
				return nil, err
			}
		}
	}

	if len(open) != 0 {
		return nil, fmt.Errorf("%w: unbalanced '('", links.ErrParse)
	}
	if done == nil {
		return nil, fmt.Errorf("%w: no value", links.ErrParse)
	}
	return done, nil
}

// tokenize splits value text into parens, numbers, and words.
func tokenize(text string) ([]string, error) {
	var toks []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			toks = append(toks, word.String())
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			word.WriteRune(r)
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", links.ErrParse, r)
		}
	}
	flush()
	return toks, nil
}
