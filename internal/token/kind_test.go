package token_test

import (
	"testing"

	"hxinfer/internal/token"
)

func TestKeywordsRoundTrip(t *testing.T) {
	for _, word := range []string{"class", "abstract", "typedef", "function", "switch", "untyped", "null"} {
		k, ok := token.LookupKeyword(word)
		if !ok {
			t.Fatalf("%q should be a keyword", word)
		}
		if k.String() != word {
			t.Fatalf("String() = %q, want %q", k.String(), word)
		}
	}
	for _, word := range []string{"from", "to", "Int", "Class"} {
		if _, ok := token.LookupKeyword(word); ok {
			t.Fatalf("%q must stay an identifier", word)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	if !token.KwMacro.IsKeyword() || token.Ident.IsKeyword() {
		t.Fatalf("IsKeyword boundaries broken")
	}
	if !token.QuestionAssign.IsAssignOp() || token.EqEq.IsAssignOp() {
		t.Fatalf("IsAssignOp mismatch")
	}
	if !token.KwStatic.Modifier() || token.KwVar.Modifier() {
		t.Fatalf("Modifier mismatch")
	}
	if got := token.DotDotDot.String(); got != "..." {
		t.Fatalf("DotDotDot.String() = %q", got)
	}
	tok := token.Token{Kind: token.Ident, Text: "from"}
	if !tok.IsWord("from") || tok.IsWord("to") {
		t.Fatalf("IsWord mismatch")
	}
}
