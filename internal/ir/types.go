package ir

// IRNode is a lowered node. Type is always a canonical tag; editor-only
// concerns (position) are dropped during lowering.
type IRNode struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Label         string            `json:"label,omitempty"`
	Config        map[string]any    `json:"config,omitempty"`
	Data          map[string]any    `json:"data,omitempty"`
	InputMappings map[string]string `json:"input_mappings,omitempty"`
}

// IREdge is a lowered edge.
type IREdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Type         string `json:"type"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
	Label        string `json:"label,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// RoutingMap describes the outgoing branches of a routing-capable node.
type RoutingMap struct {
	// Handles is the full computed handle set, in deterministic order.
	Handles []string `json:"handles"`
	// Edges maps each covered handle to its target node id.
	Edges map[string]string `json:"edges"`
	// DefaultHandle is the first of {else, default, pending} present in
	// Handles, or empty when none applies.
	DefaultHandle string `json:"default_handle,omitempty"`
}

// GraphIR is the compiled representation consumed by the execution engine.
type GraphIR struct {
	SchemaVersion string                `json:"schema_version"`
	Nodes         []IRNode              `json:"nodes"`
	Edges         []IREdge              `json:"edges"`
	EntryPoint    string                `json:"entry_point,omitempty"`
	ExitNodes     []string              `json:"exit_nodes"`
	RoutingMaps   map[string]RoutingMap `json:"routing_maps"`
	// InterruptBefore lists nodes at which execution must pause pending
	// external (human) input.
	InterruptBefore []string       `json:"interrupt_before"`
	Metadata        map[string]any `json:"metadata"`
}
