// Package registry provides the operator registry consumed by the compiler:
// per-node-type specs declaring semantic state reads/writes and an optional
// config JSON Schema.
//
// The built-in catalog is authored in CUE (catalog.cue, embedded) and parsed
// once per process. The registry is read-mostly shared state: populated at
// first use, never mutated during a compile, and safe to share between
// concurrent compiles.
package registry
