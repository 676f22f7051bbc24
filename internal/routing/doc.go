// Package routing computes the valid outgoing branch handles for
// routing-capable node types.
//
// Handle computation is an exhaustive switch over the closed canonical type
// set, so every branching node type has routing semantics defined at compile
// time. Non-branching types compute an empty handle set.
package routing
