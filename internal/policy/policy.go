package policy

import "context"

// Snapshot is a read-only view of a tenant's orchestration limits for one
// orchestrator agent, captured once per compile.
type Snapshot struct {
	MaxDepth         int `json:"max_depth"`
	MaxFanout        int `json:"max_fanout"`
	MaxChildrenTotal int `json:"max_children_total"`
	// AllowedScopes restricts the capability scopes a spawn may delegate.
	// nil means unrestricted.
	AllowedScopes []string `json:"allowed_scopes,omitempty"`
	// EnforcePublishedOnly requires spawn targets to be published agents.
	EnforcePublishedOnly bool `json:"enforce_published_only"`
}

// DefaultSnapshot returns the limits applied when no tenant context is
// available.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		MaxDepth:         3,
		MaxFanout:        5,
		MaxChildrenTotal: 25,
	}
}

// AllowlistSet holds the allowed spawn targets for an orchestrator agent.
// An empty set means "no allowlist configured" (everything resolvable is
// allowed).
type AllowlistSet struct {
	AgentIDs map[string]bool `json:"agent_ids"`
	Slugs    map[string]bool `json:"slugs"`
}

// Empty reports whether no allowlist entries are configured.
func (a *AllowlistSet) Empty() bool {
	return a == nil || (len(a.AgentIDs) == 0 && len(a.Slugs) == 0)
}

// Contains reports whether the agent (by id or slug) is allowlisted.
func (a *AllowlistSet) Contains(id, slug string) bool {
	if a == nil {
		return false
	}
	if id != "" && a.AgentIDs[id] {
		return true
	}
	return slug != "" && a.Slugs[slug]
}

// Agent is a resolved spawn target from the tenant's agent registry.
type Agent struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Published bool   `json:"published"`
}

// Provider performs the policy-related I/O for a compile. Implementations
// must be safe for concurrent use; the three lookups are independent reads
// and may be issued concurrently.
type Provider interface {
	GetPolicy(ctx context.Context, tenantID, agentID string) (Snapshot, error)
	GetAllowlist(ctx context.Context, tenantID, agentID string) (*AllowlistSet, error)
	ResolveAgents(ctx context.Context, tenantID string, ids, slugs []string) ([]Agent, error)
}

// Inputs is the pre-fetched bundle the orchestration-policy pass evaluates.
// It is pure data: once assembled, constraint evaluation needs no further
// I/O.
type Inputs struct {
	Policy    Snapshot
	Allowlist *AllowlistSet
	// Agents are the resolved spawn targets, indexable by id and slug.
	Agents []Agent
	// HasTenantContext is false when the compile runs without a tenant/db
	// context; target eligibility checks then degrade to a warning.
	HasTenantContext bool
}

// DefaultInputs returns the evaluation bundle used when no tenant context is
// supplied.
func DefaultInputs() *Inputs {
	return &Inputs{Policy: DefaultSnapshot()}
}

// FindAgent resolves a target reference by id first, then by slug.
func (in *Inputs) FindAgent(id, slug string) (Agent, bool) {
	if id != "" {
		for _, a := range in.Agents {
			if a.ID == id {
				return a, true
			}
		}
	}
	if slug != "" {
		for _, a := range in.Agents {
			if a.Slug == slug {
				return a, true
			}
		}
	}
	return Agent{}, false
}
