package lsp

import (
	"encoding/json"
	"strings"

	"hxinfer/internal/ast"
)

const maxHoverExpr = 80

func (s *Server) handleHover(msg *rpcMessage) error {
	var params textDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	return s.sendResponse(msg.ID, s.buildHover(canonicalURI(params.TextDocument.URI), params.Position))
}

// buildHover types the innermost expression under pos. It returns nil
// outside expressions or when the buffer changed since the last analysis.
func (s *Server) buildHover(uri string, pos position) *hover {
	s.mu.Lock()
	snap := s.snap
	doc := s.docs[uri]
	ctx := s.baseCtx
	s.mu.Unlock()
	if doc == nil {
		return nil
	}
	u, f := snap.unit(uri, doc.text)
	if u == nil {
		return nil
	}
	prog := snap.result.Program
	h, node, ok := prog.Eval.TypeAt(ctx, u.File, offsetAt(f, pos))
	if !ok || h.IsUnknown() && node == ast.NoNodeID {
		return nil
	}

	var b strings.Builder
	b.WriteString("```haxe\n")
	var rng *lspRange
	if n := prog.B.Nodes.Get(node); node != ast.NoNodeID && n != nil {
		b.WriteString(hoverExpr(prog.FS.Text(n.Span)))
		b.WriteString(" : ")
		r := rangeOf(f, n.Span)
		rng = &r
	}
	b.WriteString(h.Type().String())
	b.WriteString("\n```")
	if h.HasConstant() {
		b.WriteString("\n\nconstant `")
		b.WriteString(h.Constant().String())
		b.WriteString("`")
	}
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: b.String()},
		Range:    rng,
	}
}

// hoverExpr squeezes an expression's source onto one short line.
func hoverExpr(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxHoverExpr {
		cut := maxHoverExpr
		for cut > 0 && !isRuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "…"
	}
	return text
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
