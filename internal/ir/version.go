package ir

// Version constants for the IR document format and the compiler.
const (
	// IRVersion is the IR document schema version.
	IRVersion = "1"

	// CompilerVersion is stored with cached factories; bump it whenever the
	// emitted source for an unchanged script would differ.
	CompilerVersion = "0.3.0"
)
