// Package diag defines the diagnostic model shared by the lexer, parser,
// declaration table and evaluator.
//
// Diagnostic is the central record: Severity (info, weak_warning, warning,
// error), a compact Code with a stable string form, a short Message, the
// Primary span, an optional syntax-node handle, Notes and Fix suggestions.
//
// Fixes are data only. The evaluator proposes them ("change type tag to
// Array<Int>"); applying them is up to the caller.
//
// Producers emit through a Reporter, usually via ReportBuilder:
//
//	diag.ReportError(r, diag.SemaIncompatibleType, span, msg).
//		WithNode(uint32(id)).
//		WithFix("Change type tag to Int").
//		Emit()
//
// A nil Reporter is allowed everywhere and turns emission into a no-op, which
// is how speculative evaluation stays free of side effects.
//
// Rendering lives in internal/diagfmt.
package diag
