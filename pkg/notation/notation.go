// Package notation renders and parses the textual link forms. It is pure
// and storage-free: the engine returns structured results and this package
// owns their canonical text.
//
// Forms:
//
//	(1: 100 200)        one link per line
//	()                  the empty link set
//	(100 200)           anonymous form, submitted for creation
//	(error: 'message')  error form
//	(count: 7)          count form
//	(deleted: 3)        deletion acknowledgment
//
// See docs/ARCHITECTURE.md § Notation.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linkforge/doublets/pkg/links"
)

// FormatLink renders one link in canonical form.
func FormatLink(l links.Link) string {
	return fmt.Sprintf("(%d: %d %d)", l.ID, l.Source, l.Target)
}

// FormatLinks renders a link set, one per line. The empty set renders as ().
func FormatLinks(ls []links.Link) string {
	if len(ls) == 0 {
		return "()"
	}
	lines := make([]string, len(ls))
	for i, l := range ls {
		lines[i] = FormatLink(l)
	}
	return strings.Join(lines, "\n")
}

// FormatError renders an error in the error form.
func FormatError(err error) string {
	return fmt.Sprintf("(error: '%s')", err.Error())
}

// FormatCount renders a cardinality.
func FormatCount(n uint64) string {
	return fmt.Sprintf("(count: %d)", n)
}

// FormatDeleted renders a deletion acknowledgment.
func FormatDeleted(id links.LinkID) string {
	return fmt.Sprintf("(deleted: %d)", id)
}

// ParseLink parses one link line in canonical or anonymous form. hasID
// reports whether the line carried an id on the left.
func ParseLink(line string) (l links.Link, hasID bool, err error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return links.Link{}, false, fmt.Errorf("%w: %q is not parenthesized", links.ErrParse, line)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])

	if colon := strings.Index(s, ":"); colon >= 0 {
		id, perr := parseID(strings.TrimSpace(s[:colon]))
		if perr != nil {
			return links.Link{}, false, perr
		}
		l.ID = id
		s = strings.TrimSpace(s[colon+1:])
		hasID = true
	}

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return links.Link{}, false, fmt.Errorf("%w: %q needs a source and a target", links.ErrParse, line)
	}
	if l.Source, err = parseID(fields[0]); err != nil {
		return links.Link{}, false, err
	}
	if l.Target, err = parseID(fields[1]); err != nil {
		return links.Link{}, false, err
	}
	return l, hasID, nil
}

// ParseLinks parses a link set in notation text. A lone () is the empty set.
// Blank lines are skipped.
func ParseLinks(text string) ([]links.Link, error) {
	ls := []links.Link{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "()" {
			continue
		}
		l, _, err := ParseLink(line)
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
	}
	return ls, nil
}

// parseID parses a non-negative 64-bit id.
func parseID(s string) (links.LinkID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return links.None, fmt.Errorf("%w: %q is not a link id", links.ErrParse, s)
	}
	return links.LinkID(n), nil
}
