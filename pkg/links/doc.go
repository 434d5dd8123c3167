// Package links defines the link data model, the Store capability interface,
// the restriction-driven Links facade, and the standard errors for the
// doublets associative store.
// See docs/ARCHITECTURE.md § Data Model and § Query Algebra.
package links
