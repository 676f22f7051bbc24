package registry

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/quiltflow/quilt/internal/graph"
)

// OperatorSpec describes a node operator: the semantic state fields it reads
// and writes, and an optional compiled JSON Schema for its config.
type OperatorSpec struct {
	Type   graph.NodeType
	Reads  []string
	Writes []string
	// ConfigSchema is nil when the operator declares no config contract.
	ConfigSchema *jsonschema.Schema
}

// Registry is the read lookup interface the compiler consumes. Get returns
// nil for unknown canonical types.
type Registry interface {
	Get(t graph.NodeType) *OperatorSpec
}

// Static is an immutable in-memory Registry.
type Static struct {
	ops map[graph.NodeType]*OperatorSpec
}

// NewStatic builds a Static registry from the given specs.
func NewStatic(specs ...*OperatorSpec) *Static {
	ops := make(map[graph.NodeType]*OperatorSpec, len(specs))
	for _, spec := range specs {
		ops[spec.Type] = spec
	}
	return &Static{ops: ops}
}

// Get implements Registry.
func (s *Static) Get(t graph.NodeType) *OperatorSpec {
	return s.ops[t]
}

// Types returns the canonical types known to the registry.
func (s *Static) Types() []graph.NodeType {
	out := make([]graph.NodeType, 0, len(s.ops))
	for t := range s.ops {
		out = append(out, t)
	}
	return out
}

var (
	defaultOnce sync.Once
	defaultReg  *Static
	defaultErr  error
)

// Default returns the process-wide registry backed by the embedded catalog,
// loading it on first use. The embedded catalog is part of the binary, so a
// load failure is a build defect and panics.
func Default() *Static {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Load()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultReg
}
