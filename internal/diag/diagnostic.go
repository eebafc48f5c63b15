package diag

import (
	"hxinfer/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested correction. Title is the human description; Edits may be
// empty when the producer only knows what to suggest, not where.
type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Node is the opaque handle of the syntax node the finding belongs to,
	// zero when the producer works below the tree (lexer, parser).
	Node  uint32
	Notes []Note
	Fixes []Fix
}
