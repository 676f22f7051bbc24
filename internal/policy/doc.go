// Package policy defines the tenant-scoped orchestration constraints the
// compiler enforces: per-agent limits (depth, fanout, children), target
// allowlists, and the agent registry used for compile-time target
// resolution.
//
// Fetching is separated from evaluation: the Provider interface performs the
// I/O (database lookups), producing an Inputs bundle; the orchestration
// validation pass evaluates constraints against that bundle purely and
// synchronously, so it is unit-testable without a database.
package policy
