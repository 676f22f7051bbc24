package validate

import (
	"sort"
	"strings"

	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/policy"
)

// joinModes is the accepted set for spawn_group join_mode and join mode.
var joinModes = map[string]bool{
	"all":           true,
	"best_effort":   true,
	"fail_fast":     true,
	"quorum":        true,
	"first_success": true,
}

// targetRef is one spawn target reference extracted from node config.
type targetRef struct {
	nodeID string
	id     string
	slug   string
}

// OrchestrationPolicy evaluates orchestration nodes against the tenant's
// policy snapshot, allowlist, and resolved target agents. The pass is pure:
// all I/O results arrive pre-fetched in the context.
//
// When the graph has no orchestration nodes, or the spec-version pass has
// already rejected their presence, this pass emits nothing.
func OrchestrationPolicy(g *graph.Graph, ctx *Context) []Diagnostic {
	hasOrchestration := false
	for i := range g.Nodes {
		if g.Nodes[i].CanonicalType().IsOrchestration() {
			hasOrchestration = true
			break
		}
	}
	if !hasOrchestration {
		return nil
	}
	if !ctx.OrchestrationEnabled || g.EffectiveSpecVersion() != OrchestrationSpecVersion {
		return nil
	}

	inputs := ctx.policyInputs()
	var diags []Diagnostic
	var refs []targetRef
	childrenTotal := 0

	for i := range g.Nodes {
		n := &g.Nodes[i]
		switch n.CanonicalType() {
		case graph.TypeSpawnRun:
			diags = append(diags, checkScopeSubset(n, inputs.Policy)...)
			id := configString(n.Config, "target_agent_id")
			slug := configString(n.Config, "target_agent_slug")
			if id == "" && slug == "" {
				diags = append(diags, nodeError(n.ID, CodeTargetRequired,
					"spawn_run requires a target_agent_id or target_agent_slug"))
			} else {
				refs = append(refs, targetRef{nodeID: n.ID, id: id, slug: slug})
			}
			childrenTotal++

		case graph.TypeSpawnGroup:
			diags = append(diags, checkScopeSubset(n, inputs.Policy)...)
			targets, _ := n.Config["targets"].([]any)
			if len(targets) == 0 {
				diags = append(diags, nodeError(n.ID, CodeTargetsRequired,
					"spawn_group requires a non-empty targets list"))
			}
			for _, t := range targets {
				id, slug := targetFromEntry(t)
				if id == "" && slug == "" {
					diags = append(diags, nodeError(n.ID, CodeTargetRequired,
						"spawn_group target entries require an agent_id or agent_slug"))
					continue
				}
				refs = append(refs, targetRef{nodeID: n.ID, id: id, slug: slug})
			}
			if len(targets) > inputs.Policy.MaxFanout {
				diags = append(diags, nodeError(n.ID, CodeFanoutExceeded,
					"spawn_group targets exceed max_fanout: %d > %d",
					len(targets), inputs.Policy.MaxFanout))
			}
			diags = append(diags, checkJoinMode(n, "join_mode")...)
			childrenTotal += len(targets)

		case graph.TypeJoin:
			diags = append(diags, checkJoinMode(n, "mode")...)
			if configString(n.Config, "orchestration_group_id") == "" && !hasIncomingOfType(g, n.ID, graph.TypeSpawnGroup) {
				diags = append(diags, nodeError(n.ID, CodeJoinGroupMissing,
					"join requires an orchestration_group_id or an incoming edge from a spawn_group node"))
			}

		case graph.TypeRouter:
			if raw, ok := n.Config["routes"]; ok {
				if _, isList := raw.([]any); !isList {
					diags = append(diags, nodeError(n.ID, CodeRoutesNotList,
						"router routes config must be a list"))
				}
			}

		case graph.TypeJudge:
			if !hasIncomingOfType(g, n.ID, graph.TypeJoin) && !hasIncomingOfType(g, n.ID, graph.TypeReplan) {
				diags = append(diags, nodeWarning(n.ID, CodeJudgeUpstream,
					"judge has no incoming edge from a join or replan node"))
			}

		case graph.TypeReplan, graph.TypeCancelSubtree:
			if configString(n.Config, "run_id") == "" && !hasLineageIncoming(g, n.ID) {
				diags = append(diags, nodeError(n.ID, CodeLineageMissing,
					"%s requires a run_id or an incoming edge from a lineage-producing node", n.CanonicalType()))
			}
		}
	}

	if childrenTotal > inputs.Policy.MaxChildrenTotal {
		diags = append(diags, graphError(CodeChildrenExceeded,
			"declared spawn children exceed max_children_total: %d > %d",
			childrenTotal, inputs.Policy.MaxChildrenTotal))
	}

	diags = append(diags, checkDepth(g, inputs.Policy)...)
	diags = append(diags, checkTargets(refs, inputs)...)
	return diags
}

// checkScopeSubset enforces a non-empty scope_subset on spawn nodes, and its
// containment in the policy's allowed scopes when restricted.
func checkScopeSubset(n *graph.Node, snap policy.Snapshot) []Diagnostic {
	scopes := stringList(n.Config["scope_subset"])
	if len(scopes) == 0 {
		return []Diagnostic{nodeError(n.ID, CodeScopeRequired,
			"%s requires a non-empty scope_subset", n.CanonicalType())}
	}
	if snap.AllowedScopes == nil {
		return nil
	}

	allowed := make(map[string]bool, len(snap.AllowedScopes))
	for _, s := range snap.AllowedScopes {
		allowed[s] = true
	}
	var outside []string
	for _, s := range scopes {
		if !allowed[s] {
			outside = append(outside, s)
		}
	}
	if len(outside) == 0 {
		return nil
	}
	sort.Strings(outside)
	return []Diagnostic{nodeError(n.ID, CodeScopeNotAllowed,
		"scope_subset contains scopes outside the tenant's allowed set: %s",
		strings.Join(outside, ", "))}
}

// checkJoinMode validates the named config key against the accepted join
// mode set, and the quorum threshold when mode is quorum. A missing mode is
// accepted; the runtime defaults it.
func checkJoinMode(n *graph.Node, key string) []Diagnostic {
	mode := configString(n.Config, key)
	if mode == "" {
		return nil
	}
	if !joinModes[mode] {
		return []Diagnostic{nodeError(n.ID, CodeInvalidJoinMode,
			"invalid %s %q, must be one of: all, best_effort, fail_fast, quorum, first_success", key, mode)}
	}
	if mode == "quorum" {
		if t, ok := intFromConfig(n.Config, "quorum_threshold"); !ok || t < 1 {
			return []Diagnostic{nodeError(n.ID, CodeQuorumThreshold,
				"quorum mode requires an integer quorum_threshold >= 1")}
		}
	}
	return nil
}

// checkTargets resolves spawn target references against the pre-fetched
// agent set. Without tenant context the check degrades to one warning:
// compile-time resolution is advisory, the runtime re-checks at spawn time.
func checkTargets(refs []targetRef, inputs *policy.Inputs) []Diagnostic {
	if len(refs) == 0 {
		return nil
	}
	if !inputs.HasTenantContext {
		return []Diagnostic{{
			Code:     CodeTargetCheckSkipped,
			Message:  "no tenant context supplied, skipping compile-time target eligibility checks",
			Severity: SeverityWarning,
		}}
	}

	var diags []Diagnostic
	for _, ref := range refs {
		agent, ok := inputs.FindAgent(ref.id, ref.slug)
		if !ok {
			diags = append(diags, nodeError(ref.nodeID, CodeTargetUnresolved,
				"spawn target %s could not be resolved", describeRef(ref)))
			continue
		}
		if !inputs.Allowlist.Empty() && !inputs.Allowlist.Contains(agent.ID, agent.Slug) {
			diags = append(diags, nodeError(ref.nodeID, CodeTargetNotAllowed,
				"spawn target %s is not allowlisted for this agent", describeRef(ref)))
		}
		if inputs.Policy.EnforcePublishedOnly && !agent.Published {
			diags = append(diags, nodeError(ref.nodeID, CodeTargetUnpublished,
				"spawn target %s is not published", describeRef(ref)))
		}
	}
	return diags
}

func describeRef(ref targetRef) string {
	if ref.id != "" {
		return "id " + ref.id
	}
	return "slug " + ref.slug
}

// checkDepth estimates orchestration depth by walking forward edges,
// incrementing only at spawn-type nodes. An explicit stack with path
// tracking handles large graphs without recursion limits. A cycle that
// passes through a spawn node makes the depth unbounded and is an error; at
// most one such error is emitted.
func checkDepth(g *graph.Graph, snap policy.Snapshot) []Diagnostic {
	var roots []string
	if starts := g.StartNodes(); len(starts) == 1 {
		roots = []string{starts[0].ID}
	} else {
		for i := range g.Nodes {
			roots = append(roots, g.Nodes[i].ID)
		}
	}

	adj := g.Adjacency()
	isSpawn := func(id string) bool {
		n, ok := g.Node(id)
		return ok && n.CanonicalType().IsSpawn()
	}

	maxDepth := 0
	cycleReported := false
	var cycleDiag Diagnostic

	type frame struct {
		id    string
		depth int
		exit  bool
	}

	for _, root := range roots {
		stack := []frame{{id: root}}
		var path []string
		onPath := map[string]int{}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.exit {
				delete(onPath, path[len(path)-1])
				path = path[:len(path)-1]
				continue
			}

			if idx, seen := onPath[f.id]; seen {
				if cycleReported {
					continue
				}
				for _, id := range path[idx:] {
					if isSpawn(id) {
						cycleReported = true
						cycleDiag = nodeError(id, CodeDepthUnbounded,
							"cycle through spawn node %q, depth cannot be bounded safely", id)
						break
					}
				}
				continue
			}

			depth := f.depth
			if isSpawn(f.id) {
				depth++
			}
			if depth > maxDepth {
				maxDepth = depth
			}

			onPath[f.id] = len(path)
			path = append(path, f.id)
			stack = append(stack, frame{id: f.id, exit: true})
			for _, next := range adj[f.id] {
				stack = append(stack, frame{id: next, depth: depth})
			}
		}
	}

	var diags []Diagnostic
	if cycleReported {
		diags = append(diags, cycleDiag)
	}
	if maxDepth > snap.MaxDepth {
		diags = append(diags, graphError(CodeDepthExceeded,
			"estimated orchestration depth exceeds max_depth: %d > %d", maxDepth, snap.MaxDepth))
	}
	return diags
}

// hasIncomingOfType reports whether any incoming edge originates from a node
// of the given canonical type.
func hasIncomingOfType(g *graph.Graph, nodeID string, t graph.NodeType) bool {
	for _, e := range g.Incoming(nodeID) {
		if src, ok := g.Node(e.Source); ok && src.CanonicalType() == t {
			return true
		}
	}
	return false
}

// hasLineageIncoming reports whether any incoming edge originates from a
// lineage-producing orchestration node.
func hasLineageIncoming(g *graph.Graph, nodeID string) bool {
	for _, e := range g.Incoming(nodeID) {
		if src, ok := g.Node(e.Source); ok && src.CanonicalType().ProducesLineage() {
			return true
		}
	}
	return false
}

// targetFromEntry extracts an agent id/slug pair from one targets entry. An
// entry may be a bare string (treated as an id) or an object with agent_id
// and agent_slug keys.
func targetFromEntry(entry any) (id, slug string) {
	switch v := entry.(type) {
	case string:
		return v, ""
	case map[string]any:
		id, _ = v["agent_id"].(string)
		slug, _ = v["agent_slug"].(string)
		return id, slug
	}
	return "", ""
}

// configString reads a string config value, "" when absent or mistyped.
func configString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}

// stringList coerces a config value into a string slice, dropping non-string
// entries.
func stringList(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// intFromConfig reads an integer config value. JSON decoding produces
// float64, YAML produces int; both are accepted.
func intFromConfig(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
