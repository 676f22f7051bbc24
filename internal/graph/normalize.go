package graph

// NodeType is a canonical node type tag. The set of canonical tags is closed;
// routing semantics are defined by an exhaustive switch over these constants.
type NodeType string

// Canonical node types.
const (
	TypeStart        NodeType = "start"
	TypeEnd          NodeType = "end"
	TypeLLM          NodeType = "llm"
	TypeTool         NodeType = "tool"
	TypeRAG          NodeType = "rag"
	TypeAgent        NodeType = "agent"
	TypeParallel     NodeType = "parallel"
	TypeIfElse       NodeType = "if_else"
	TypeClassify     NodeType = "classify"
	TypeWhile        NodeType = "while"
	TypeUserApproval NodeType = "user_approval"
	TypeConditional  NodeType = "conditional"
	TypeHumanInput   NodeType = "human_input"

	// Orchestration primitives (spec_version "2.0").
	TypeRouter        NodeType = "router"
	TypeJudge         NodeType = "judge"
	TypeJoin          NodeType = "join"
	TypeSpawnRun      NodeType = "spawn_run"
	TypeSpawnGroup    NodeType = "spawn_group"
	TypeReplan        NodeType = "replan"
	TypeCancelSubtree NodeType = "cancel_subtree"
)

// aliases maps surface-syntax tags to canonical tags. Canonical tags map to
// themselves so the table is the single source of truth for known surfaces.
var aliases = map[string]NodeType{
	"input":         TypeStart,
	"start":         TypeStart,
	"output":        TypeEnd,
	"end":           TypeEnd,
	"llm_call":      TypeLLM,
	"llm":           TypeLLM,
	"tool_call":     TypeTool,
	"rag_retrieval": TypeRAG,
	"agent_call":    TypeAgent,
}

// Normalize maps a surface type tag to its canonical tag. Unmapped tags pass
// through unchanged: unknown types are reported by the configuration
// validator (which finds no operator spec for them), not here.
func Normalize(raw string) NodeType {
	if t, ok := aliases[raw]; ok {
		return t
	}
	return NodeType(raw)
}

// orchestrationTypes is the orchestration-v2 type set.
var orchestrationTypes = map[NodeType]bool{
	TypeSpawnRun:      true,
	TypeSpawnGroup:    true,
	TypeJoin:          true,
	TypeRouter:        true,
	TypeJudge:         true,
	TypeReplan:        true,
	TypeCancelSubtree: true,
}

// IsOrchestration reports whether t is an orchestration-v2 primitive.
func (t NodeType) IsOrchestration() bool {
	return orchestrationTypes[t]
}

// IsSpawn reports whether t spawns child runs (depth-contributing).
func (t NodeType) IsSpawn() bool {
	return t == TypeSpawnRun || t == TypeSpawnGroup
}

// lineageTypes are orchestration types whose output carries run lineage,
// making them valid predecessors for replan and cancel_subtree.
var lineageTypes = map[NodeType]bool{
	TypeSpawnRun:   true,
	TypeSpawnGroup: true,
	TypeJoin:       true,
	TypeJudge:      true,
	TypeReplan:     true,
}

// ProducesLineage reports whether t emits an orchestration run lineage.
func (t NodeType) ProducesLineage() bool {
	return lineageTypes[t]
}

// IsInterrupt reports whether execution must pause before t for external
// human input.
func (t NodeType) IsInterrupt() bool {
	return t == TypeHumanInput || t == TypeUserApproval
}
