// Package compiler is the async shell around the compilation pipeline: it
// resolves external references, fetches policy inputs, runs validation,
// lowers the graph to IR, and assembles the compiled snapshot.
//
// Compile is the only entry point. Everything below it (validation, routing,
// lowering, hashing) is pure and synchronous; this package owns all I/O and
// all hard-failure semantics.
package compiler
