// Package memmap owns the memory map document model and its wire contract.
//
// Ownership boundary:
// - protocol envelope, recursive field tree, type and value variants
// - hex-or-decimal integer and ascii-only string rules at the decode boundary
// - JSON and TOML (de)serialization of whole documents
//
// Address and access resolution live in package elaborate.
package memmap
