package compiler

import (
	"fmt"
	"strings"

	"github.com/quiltflow/quilt/internal/validate"
)

// ResolutionError is a hard compile failure: a node references an external
// dependency that does not exist. The IR may not reference a non-existent
// dependency, so this is fatal rather than a diagnostic.
type ResolutionError struct {
	NodeID string
	// Kind is the reference kind: "tool", "pipeline", or "agent".
	Kind string
	Ref  string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("node %s: cannot resolve %s %q: %v", e.NodeID, e.Kind, e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ValidationFailedError is a hard compile failure carrying every diagnostic
// the pipeline produced, errors and warnings alike. The message aggregates
// only the error-severity findings.
type ValidationFailedError struct {
	Diagnostics []validate.Diagnostic
}

func (e *ValidationFailedError) Error() string {
	var msgs []string
	for _, d := range e.Diagnostics {
		if d.Severity == validate.SeverityError {
			msgs = append(msgs, d.String())
		}
	}
	return fmt.Sprintf("graph validation failed with %d error(s): %s",
		len(msgs), strings.Join(msgs, "; "))
}

// Errors returns only the error-severity diagnostics.
func (e *ValidationFailedError) Errors() []validate.Diagnostic {
	var out []validate.Diagnostic
	for _, d := range e.Diagnostics {
		if d.Severity == validate.SeverityError {
			out = append(out, d)
		}
	}
	return out
}
