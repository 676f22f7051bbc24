package validate

import "fmt"

// Diagnostic codes. Errors block IR production; warnings never do.
const (
	// Structural (E101-E109)
	CodeStartCount   = "E101" // graph must have exactly one start node
	CodeNoEnd        = "E102" // graph must have at least one end node
	CodeUnreachable  = "E103" // node unreachable from start
	CodeDuplicateID  = "E104" // duplicate node id
	CodeDanglingEdge = "E105" // edge references unknown node id

	// Configuration (E110-E119)
	CodeUnknownType  = "E110" // no operator spec for node type
	CodeConfigSchema = "E111" // config violates operator schema

	// Data-flow (W120-W129)
	CodeMissingProducer = "W120" // node reads fields nothing writes

	// Parallel-safety (W130-W139)
	CodeParallelConflict = "W130" // parallel branches write shared fields

	// Spec-version (E140-E149)
	CodeUnsupportedVersion    = "E140" // spec_version not supported
	CodeOrchestrationVersion  = "E141" // orchestration nodes require spec 2.0
	CodeOrchestrationDisabled = "E142" // orchestration feature flag off

	// Routing (E150-E159)
	CodeMissingHandle   = "E150" // outgoing edge lacks source_handle
	CodeInvalidHandle   = "E151" // source_handle not in computed set
	CodeDuplicateHandle = "E152" // handle used by more than one edge
	CodeUncoveredHandle = "E153" // computed handle has no covering edge

	// Artifact mapping (E160-E169)
	CodeMappingEmpty       = "E160" // empty mapping key or value
	CodeMappingUnknown     = "E161" // mapping references unknown node
	CodeMappingNotUpstream = "W162" // mapping source is not an ancestor

	// Orchestration policy (E170-E189)
	CodeScopeRequired      = "E170" // spawn requires non-empty scope_subset
	CodeScopeNotAllowed    = "E171" // scope outside tenant's allowed set
	CodeTargetRequired     = "E172" // spawn_run requires a target id or slug
	CodeTargetsRequired    = "E173" // spawn_group requires non-empty targets
	CodeFanoutExceeded     = "E174" // targets exceed max_fanout
	CodeInvalidJoinMode    = "E175" // unknown join mode
	CodeQuorumThreshold    = "E176" // quorum mode needs threshold >= 1
	CodeJoinGroupMissing   = "E177" // join needs group id or spawn_group edge
	CodeRoutesNotList      = "E178" // router routes config must be a list
	CodeJudgeUpstream      = "W179" // judge should follow join or replan
	CodeLineageMissing     = "E180" // replan/cancel needs run_id or lineage edge
	CodeChildrenExceeded   = "E181" // declared children exceed max_children_total
	CodeDepthUnbounded     = "E182" // cycle through spawn node
	CodeDepthExceeded      = "E183" // estimated depth exceeds max_depth
	CodeTargetUnresolved   = "E184" // spawn target not found in registry
	CodeTargetNotAllowed   = "E185" // spawn target not allowlisted
	CodeTargetUnpublished  = "E186" // spawn target is not published
	CodeTargetCheckSkipped = "W187" // no tenant context, eligibility skipped
)

// Severity of a diagnostic.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single validation finding attached to a node or edge.
type Diagnostic struct {
	NodeID   string   `json:"node_id,omitempty"`
	EdgeID   string   `json:"edge_id,omitempty"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// String renders the diagnostic in "[code] severity: message" form with the
// node/edge anchor when present.
func (d Diagnostic) String() string {
	anchor := ""
	switch {
	case d.NodeID != "":
		anchor = fmt.Sprintf(" (node %s)", d.NodeID)
	case d.EdgeID != "":
		anchor = fmt.Sprintf(" (edge %s)", d.EdgeID)
	}
	return fmt.Sprintf("[%s] %s: %s%s", d.Code, d.Severity, d.Message, anchor)
}

// nodeError builds an error diagnostic anchored to a node.
func nodeError(nodeID, code, format string, args ...any) Diagnostic {
	return Diagnostic{
		NodeID:   nodeID,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// nodeWarning builds a warning diagnostic anchored to a node.
func nodeWarning(nodeID, code, format string, args ...any) Diagnostic {
	return Diagnostic{
		NodeID:   nodeID,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	}
}

// edgeError builds an error diagnostic anchored to an edge.
func edgeError(edgeID, code, format string, args ...any) Diagnostic {
	return Diagnostic{
		EdgeID:   edgeID,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// graphError builds an error diagnostic not anchored to any element.
func graphError(code, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// CountErrors returns the number of error-severity diagnostics.
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	return CountErrors(diags) > 0
}
