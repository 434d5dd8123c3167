// Wire protocol between the doublets daemon and its socket clients:
// newline-delimited JSON, one request and one response per line.
package daemon

import (
	"errors"
	"fmt"

	"github.com/linkforge/doublets/pkg/links"
)

// Request is one client call to the daemon.
type Request struct {
	ReqID  string `json:"req_id"`
	Method string `json:"method"`
	ID     uint64 `json:"id,omitempty"`
	Source uint64 `json:"source,omitempty"`
	Target uint64 `json:"target,omitempty"`
}

// wireLink mirrors links.Link on the wire.
type wireLink struct {
	ID     uint64 `json:"id"`
	Source uint64 `json:"source"`
	Target uint64 `json:"target"`
}

// Response answers one request. Scan responses carry the full batch in
// Links; point operations carry Link.
type Response struct {
	OK    bool       `json:"ok"`
	ReqID string     `json:"req_id"`
	Link  *wireLink  `json:"link,omitempty"`
	Links []wireLink `json:"links,omitempty"`
	Error string     `json:"error,omitempty"`
	Kind  string     `json:"kind,omitempty"`
}

// Protocol method names.
const (
	MethodCreate = "create"
	MethodRead   = "read"
	MethodScan   = "scan"
	MethodUpdate = "update"
	MethodDelete = "delete"
	MethodPing   = "ping"
)

// Error kinds carried in Response.Kind so clients can map a remote failure
// back onto the sentinel it wraps.
const (
	KindNotFound        = "not_found"
	KindInvalidArgument = "invalid_argument"
	KindUnavailable     = "unavailable"
	KindInternal        = "internal"
)

// kindOf maps an engine error onto its wire kind.
func kindOf(err error) string {
	switch {
	case errors.Is(err, links.ErrNotFound):
		return KindNotFound
	case errors.Is(err, links.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, links.ErrStoreUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// errOf maps a wire kind back onto a local error.
func errOf(kind, msg string) error {
	switch kind {
	case KindNotFound:
		return fmt.Errorf("%s: %w", msg, links.ErrNotFound)
	case KindInvalidArgument:
		return fmt.Errorf("%s: %w", msg, links.ErrInvalidArgument)
	case KindUnavailable:
		return fmt.Errorf("%s: %w", msg, links.ErrStoreUnavailable)
	default:
		return errors.New(msg)
	}
}

// toWire converts a link for transmission.
func toWire(l links.Link) wireLink {
	return wireLink{ID: uint64(l.ID), Source: uint64(l.Source), Target: uint64(l.Target)}
}

// fromWire converts a received link.
func fromWire(w wireLink) links.Link {
	return links.Link{ID: links.LinkID(w.ID), Source: links.LinkID(w.Source), Target: links.LinkID(w.Target)}
}

// DefaultSocketName is the socket file created inside the data directory.
const DefaultSocketName = "doublets.sock"
