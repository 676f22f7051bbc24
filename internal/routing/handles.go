package routing

import (
	"github.com/quiltflow/quilt/internal/graph"
)

// JoinHandles is the fixed outcome set of a join node.
var JoinHandles = []string{"completed", "completed_with_errors", "failed", "timed_out", "pending"}

// Handles computes the valid outgoing handle set for a node. A nil result
// means the node is not routing-capable. The order is deterministic:
// configured names in authored order, then the fixed fallback handle.
func Handles(n *graph.Node) []string {
	switch n.CanonicalType() {
	case graph.TypeIfElse:
		return appendUnique(NamesFromConfig(n.Config, "conditions"), "else")
	case graph.TypeClassify:
		return NamesFromConfig(n.Config, "categories")
	case graph.TypeWhile:
		return []string{"loop", "exit"}
	case graph.TypeUserApproval:
		return []string{"approve", "reject"}
	case graph.TypeConditional:
		return []string{"true", "false"}
	case graph.TypeRouter:
		return appendUnique(NamesFromConfig(n.Config, "routes"), "default")
	case graph.TypeJudge:
		if outcomes := NamesFromConfig(n.Config, "outcomes"); len(outcomes) > 0 {
			return outcomes
		}
		return []string{"pass", "fail"}
	case graph.TypeJoin:
		return append([]string(nil), JoinHandles...)
	case graph.TypeReplan:
		return []string{"replan", "continue"}
	default:
		return nil
	}
}

// defaultPriority is the symbol order used for default-handle selection.
var defaultPriority = []string{"else", "default", "pending"}

// DefaultHandle returns the first priority symbol present in handles, or ""
// when none applies. Selection is deterministic: a node with handles
// {a, else} always selects "else".
func DefaultHandle(handles []string) string {
	for _, candidate := range defaultPriority {
		for _, h := range handles {
			if h == candidate {
				return candidate
			}
		}
	}
	return ""
}

// NamesFromConfig extracts a list of branch names from a config entry. The
// entry may be a list of strings or a list of objects carrying a "name"
// field; anything else contributes nothing. Duplicates are dropped, first
// occurrence wins.
func NamesFromConfig(cfg map[string]any, key string) []string {
	raw, ok := cfg[key]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var names []string
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		var name string
		switch v := item.(type) {
		case string:
			name = v
		case map[string]any:
			if s, ok := v["name"].(string); ok {
				name = s
			}
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// appendUnique appends fallback to names unless already present.
func appendUnique(names []string, fallback string) []string {
	for _, n := range names {
		if n == fallback {
			return names
		}
	}
	return append(names, fallback)
}
