package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/quiltflow/quilt/internal/graph"
)

// Configuration validates each node against its operator spec: the canonical
// type must be known to the registry, and the node config must satisfy the
// operator's config schema. Each leaf schema violation becomes one error
// diagnostic carrying the schema library's message text.
func Configuration(g *graph.Graph, ctx *Context) []Diagnostic {
	var diags []Diagnostic

	for i := range g.Nodes {
		n := &g.Nodes[i]
		spec := ctx.Registry.Get(n.CanonicalType())
		if spec == nil {
			diags = append(diags, nodeError(n.ID, CodeUnknownType,
				"Unknown node type %q", n.Type))
			continue
		}
		if spec.ConfigSchema == nil {
			continue
		}

		instance, err := jsonInstance(n.Config)
		if err != nil {
			diags = append(diags, nodeError(n.ID, CodeConfigSchema,
				"config is not JSON-serializable: %v", err))
			continue
		}

		if err := spec.ConfigSchema.Validate(instance); err != nil {
			var ve *jsonschema.ValidationError
			if errors.As(err, &ve) {
				for _, msg := range schemaViolations(ve) {
					diags = append(diags, nodeError(n.ID, CodeConfigSchema, "%s", msg))
				}
			} else {
				diags = append(diags, nodeError(n.ID, CodeConfigSchema, "%v", err))
			}
		}
	}

	return diags
}

// jsonInstance round-trips a config map through JSON so the schema library
// sees JSON-native values (float64 numbers, not Go ints).
func jsonInstance(cfg map[string]any) (any, error) {
	if cfg == nil {
		cfg = map[string]any{}
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// englishPrinter localizes schema violation messages.
var englishPrinter = message.NewPrinter(language.English)

// schemaViolations flattens a validation error tree into one message per
// leaf violation.
func schemaViolations(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		return []string{fmt.Sprintf("config%s: %s", loc, ve.ErrorKind.LocalizedString(englishPrinter))}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, schemaViolations(cause)...)
	}
	return out
}
