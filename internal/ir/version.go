package ir

// Version constants for the IR schema and compiler.
const (
	// SchemaVersion is the GraphIR schema version.
	SchemaVersion = "1"

	// CompilerVersion is the quilt compiler version.
	CompilerVersion = "0.1.0"
)
