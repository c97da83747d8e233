// Package elaborate resolves a memory map into a concrete layout.
//
// A pre-order walk threads a running address cursor and the inherited access
// through the field tree. Each leaf gets an address, an access, a footprint
// aligned to the protocol's dataMin and a range annotation; declared values
// are checked against the leaf's type. The first violation aborts the walk.
package elaborate
