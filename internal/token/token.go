package token

import (
	"hxinfer/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, string, regex, bool or null literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, RegexLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsWord reports whether the token is an identifier with the given text.
// Used for contextual words such as `from` and `to`.
func (t Token) IsWord(text string) bool { return t.Kind == Ident && t.Text == text }

// Adjacent reports whether next starts exactly where t ends.
func (t Token) Adjacent(next Token) bool {
	return t.Span.File == next.Span.File && t.Span.End == next.Span.Start
}
