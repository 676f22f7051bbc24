// Package validate implements the compiler's validation pipeline: eight
// independent passes over an agent graph, each a pure function
// (Graph, Context) -> []Diagnostic.
//
// Every pass runs even after an earlier pass finds an error, so callers get
// the complete picture in one round-trip. Error-severity diagnostics block
// IR production (enforced by the compile shell, not here); warnings never
// block.
//
// Passes 1-7 are deterministic and I/O-free. The orchestration-policy pass
// is also pure, but evaluates constraints against a policy.Inputs bundle the
// shell fetched beforehand.
package validate
