package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/quiltflow/quilt/internal/graph"
)

//go:embed catalog.cue
var catalogSource []byte

// Load parses the embedded CUE catalog into a Static registry, compiling
// each operator's config schema.
func Load() (*Static, error) {
	return LoadBytes(catalogSource)
}

// LoadBytes parses a CUE catalog document. The document must contain an
// "operators" struct keyed by canonical node type.
func LoadBytes(src []byte) (*Static, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("parsing operator catalog: %w", err)
	}

	opsVal := v.LookupPath(cue.ParsePath("operators"))
	if !opsVal.Exists() {
		return nil, fmt.Errorf("operator catalog: missing \"operators\" struct")
	}

	iter, err := opsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("operator catalog: %w", err)
	}

	var specs []*OperatorSpec
	for iter.Next() {
		opType := graph.NodeType(iter.Label())
		spec, err := parseOperator(opType, iter.Value())
		if err != nil {
			return nil, fmt.Errorf("operator %q: %w", opType, err)
		}
		specs = append(specs, spec)
	}

	return NewStatic(specs...), nil
}

// parseOperator decodes one operator entry.
func parseOperator(opType graph.NodeType, v cue.Value) (*OperatorSpec, error) {
	spec := &OperatorSpec{Type: opType}

	readsVal := v.LookupPath(cue.ParsePath("reads"))
	if readsVal.Exists() {
		if err := readsVal.Decode(&spec.Reads); err != nil {
			return nil, fmt.Errorf("reads: %w", err)
		}
	}

	writesVal := v.LookupPath(cue.ParsePath("writes"))
	if writesVal.Exists() {
		if err := writesVal.Decode(&spec.Writes); err != nil {
			return nil, fmt.Errorf("writes: %w", err)
		}
	}

	schemaVal := v.LookupPath(cue.ParsePath("config_schema"))
	if schemaVal.Exists() {
		var raw map[string]any
		if err := schemaVal.Decode(&raw); err != nil {
			return nil, fmt.Errorf("config_schema: %w", err)
		}
		schema, err := compileSchema(string(opType), raw)
		if err != nil {
			return nil, fmt.Errorf("config_schema: %w", err)
		}
		spec.ConfigSchema = schema
	}

	return spec, nil
}

// compileSchema compiles a raw JSON Schema document. The document is
// round-tripped through JSON so the schema compiler sees JSON-native values.
func compileSchema(name string, raw map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	url := "registry:///" + name + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}
