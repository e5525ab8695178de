package errors

// Error codes used in diagnostics and documentation to give every
// failure class a stable identity across the toolchain.
//
// Error code ranges:
// E0001-E0099: Lowering errors (source construct has no translation rule)
// E0100-E0199: Inference notes (degradation telemetry, never fatal)
// E0200-E0299: Annotation directive errors
// E0300-E0399: Codegen invariant violations (always a pyrite bug)
// E0400-E0499: Feedback-loop errors
const (
	// E0001: a source construct with no defined lowering rule
	ErrorUnsupportedConstruct = "E0001"

	// E0002: malformed AST dump from the upstream parser
	ErrorMalformedDump = "E0002"

	// E0100: a binding degraded to the dynamic fallback type
	NoteInferenceDegradation = "E0100"

	// E0101: escape rate exceeded the configured regression gate
	ErrorEscapeGate = "E0101"

	// E0200: malformed or unknown annotation directive
	ErrorBadDirective = "E0200"

	// E0300: a raise site with no resolvable exception scope
	ErrorUnresolvedScope = "E0300"

	// E0301: emission requested for a binding missing from the frozen
	// type table
	ErrorMissingBinding = "E0301"

	// E0400: the target compiler exhausted its retry budget for a unit
	ErrorVerifyExhausted = "E0400"
)
