// Package graph defines the immutable value types for an authored agent
// graph: nodes, edges, and the graph itself, plus graph-local query helpers.
//
// All other internal packages import graph; graph imports nothing internal.
// The compiler treats a Graph as a read-only input: nothing in this module
// mutates a caller-owned Graph, and query helpers return copies or fresh
// slices.
//
// Node types are a closed set of canonical tags (NodeType constants). Surface
// syntax aliases such as "input" or "llm_call" are mapped to canonical tags
// by Normalize; raw aliases never leak past CanonicalType.
package graph
