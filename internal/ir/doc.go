// Package ir defines the lowered, runtime-agnostic representation of a
// compiled agent graph, plus the canonical JSON serialization used for
// content-addressed hashing.
//
// GraphIR is the only artifact handed to the execution engine. It is fully
// self-describing: the engine never needs the original Graph.
//
// This package contains types and serialization only. All other internal
// packages may import ir; ir imports nothing internal, keeping it the
// foundational layer with no circular dependencies.
package ir
