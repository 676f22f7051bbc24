package compiler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quiltflow/quilt/internal/config"
	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/ir"
	"github.com/quiltflow/quilt/internal/policy"
	"github.com/quiltflow/quilt/internal/registry"
	"github.com/quiltflow/quilt/internal/validate"
)

// Request is one compile invocation.
type Request struct {
	Graph   *graph.Graph
	AgentID string
	Version int
	// Config is deployment configuration stored alongside the compiled
	// snapshot; the compiler does not interpret it.
	Config map[string]any
	// InputParams is the resumption payload for human-in-the-loop nodes.
	InputParams map[string]any
	// TenantID enables the policy pass's tenant-scoped checks. Empty means
	// no tenant context: defaults apply and target eligibility degrades to
	// a warning.
	TenantID string
}

// Compiler turns authored graphs into validated GraphIR. It is safe for
// concurrent use; each Compile call is independent.
type Compiler struct {
	cfg       *config.Config
	registry  registry.Registry
	policies  policy.Provider
	tools     ToolResolver
	pipelines PipelineResolver
	agents    AgentResolver
	logger    *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithConfig overrides the built-in configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Compiler) { c.cfg = cfg }
}

// WithRegistry overrides the built-in operator registry.
func WithRegistry(r registry.Registry) Option {
	return func(c *Compiler) { c.registry = r }
}

// WithPolicyProvider wires the tenant policy store. Without one, compiles
// run with fallback limits and skip target eligibility.
func WithPolicyProvider(p policy.Provider) Option {
	return func(c *Compiler) { c.policies = p }
}

// WithToolResolver wires tool reference resolution.
func WithToolResolver(r ToolResolver) Option {
	return func(c *Compiler) { c.tools = r }
}

// WithPipelineResolver wires retrieval pipeline reference resolution.
func WithPipelineResolver(r PipelineResolver) Option {
	return func(c *Compiler) { c.pipelines = r }
}

// WithAgentResolver wires sub-agent reference resolution.
func WithAgentResolver(r AgentResolver) Option {
	return func(c *Compiler) { c.agents = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New builds a Compiler with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		cfg:      config.Default(),
		registry: registry.Default(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile validates and lowers a graph. On success it returns the IR and
// all diagnostics (warnings included). On failure the returned error is a
// *ResolutionError or *ValidationFailedError; diagnostics are still
// returned alongside a validation failure so callers can render them.
//
// The caller's cancellation propagates to all pending I/O; a cancelled
// compile produces no partial IR.
func (c *Compiler) Compile(ctx context.Context, req Request) (*ir.GraphIR, []validate.Diagnostic, error) {
	if req.Graph == nil {
		return nil, nil, errors.New("compile: nil graph")
	}
	g := req.Graph

	compileID := uuid.Must(uuid.NewV7()).String()
	log := c.logger.With(
		slog.String("compile_id", compileID),
		slog.String("agent_id", req.AgentID),
		slog.Int("version", req.Version),
	)
	log.Info("compile started",
		slog.Int("nodes", len(g.Nodes)),
		slog.Int("edges", len(g.Edges)),
		slog.String("spec_version", g.EffectiveSpecVersion()),
	)

	if err := c.resolveRefs(ctx, collectRefs(g)); err != nil {
		log.Error("reference resolution failed", slog.String("error", err.Error()))
		return nil, nil, err
	}

	inputs, err := c.fetchPolicyInputs(ctx, req.TenantID, req.AgentID, g)
	if err != nil {
		log.Error("policy fetch failed", slog.String("error", err.Error()))
		return nil, nil, err
	}

	diags := validate.Run(g, &validate.Context{
		Registry:             c.registry,
		SupportedVersions:    c.cfg.SpecVersions,
		OrchestrationEnabled: c.cfg.Orchestration.Enabled,
		Policy:               inputs,
	})
	if validate.HasErrors(diags) {
		log.Warn("validation failed", slog.Int("errors", validate.CountErrors(diags)))
		return nil, diags, &ValidationFailedError{Diagnostics: diags}
	}

	snapshot, err := buildSnapshot(g, req.AgentID, req.Version, req.Config)
	if err != nil {
		return nil, diags, err
	}

	out := lower(g, req.InputParams)
	out.Metadata["agent_id"] = req.AgentID
	out.Metadata["agent_version"] = req.Version
	out.Metadata["compile_id"] = compileID
	out.Metadata["compiler_version"] = ir.CompilerVersion
	out.Metadata["spec_version"] = g.EffectiveSpecVersion()
	out.Metadata["graph_hash"] = snapshot.Hash
	out.Metadata["snapshot"] = snapshot

	log.Info("compile finished",
		slog.String("graph_hash", snapshot.Hash),
		slog.Int("warnings", len(diags)),
	)
	return out, diags, nil
}

// fetchPolicyInputs gathers the policy snapshot, allowlist, and resolved
// spawn targets. The three lookups are independent reads and are issued
// concurrently. Without a provider or tenant id the fallback limits apply
// and HasTenantContext stays false.
func (c *Compiler) fetchPolicyInputs(ctx context.Context, tenantID, agentID string, g *graph.Graph) (*policy.Inputs, error) {
	if c.policies == nil || tenantID == "" {
		return &policy.Inputs{Policy: c.cfg.FallbackPolicy()}, nil
	}

	ids, slugs := spawnTargets(g)
	inputs := &policy.Inputs{HasTenantContext: true}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		snap, err := c.policies.GetPolicy(egCtx, tenantID, agentID)
		if err != nil {
			return err
		}
		inputs.Policy = snap
		return nil
	})
	eg.Go(func() error {
		allow, err := c.policies.GetAllowlist(egCtx, tenantID, agentID)
		if err != nil {
			return err
		}
		inputs.Allowlist = allow
		return nil
	})
	if len(ids) > 0 || len(slugs) > 0 {
		eg.Go(func() error {
			agents, err := c.policies.ResolveAgents(egCtx, tenantID, ids, slugs)
			if err != nil {
				return err
			}
			inputs.Agents = agents
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// spawnTargets collects the target agent references declared by spawn nodes.
func spawnTargets(g *graph.Graph) (ids, slugs []string) {
	add := func(id, slug string) {
		if id != "" {
			ids = append(ids, id)
		}
		if slug != "" {
			slugs = append(slugs, slug)
		}
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		switch n.CanonicalType() {
		case graph.TypeSpawnRun:
			id, _ := n.Config["target_agent_id"].(string)
			slug, _ := n.Config["target_agent_slug"].(string)
			add(id, slug)
		case graph.TypeSpawnGroup:
			targets, _ := n.Config["targets"].([]any)
			for _, t := range targets {
				switch v := t.(type) {
				case string:
					add(v, "")
				case map[string]any:
					id, _ := v["agent_id"].(string)
					slug, _ := v["agent_slug"].(string)
					add(id, slug)
				}
			}
		}
	}
	return ids, slugs
}
