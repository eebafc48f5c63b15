package fuzztests

import (
	"testing"

	"fortio.org/safecast"

	"hxinfer/internal/diag"
	"hxinfer/internal/lexer"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.hx", clampInput(input)))
		size, err := safecast.Conv[uint32](len(file.Content))
		if err != nil {
			t.Skip()
		}

		bag := diag.NewBag(64)
		tokens := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}).All()
		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
			t.Fatalf("token stream does not end with EOF: %q", truncateForLog(input))
		}
		var prev uint32
		for _, tok := range tokens {
			if tok.Span.Start < prev || tok.Span.End < tok.Span.Start || tok.Span.End > size {
				t.Fatalf("bad span %v after %d (content %d bytes): %q", tok.Span, prev, size, truncateForLog(input))
			}
			prev = tok.Span.Start
		}
	})
}
