package parser

import (
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
		p.lastKind = tok.Kind
	}
	return tok
}

// eat consumes the next token when it has kind k.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// getDiagnosticSpan: на EOF указываем сразу за последним токеном.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Иначе репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	p.err(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) expectIdent(msg string) (token.Token, bool) {
	return p.expect(token.Ident, diag.SynExpectIdentifier, msg)
}

// expectSemicolon accepts a missing `;` right after a closing brace, the way
// Haxe does for block-bodied statements.
func (p *Parser) expectSemicolon() {
	if p.eat(token.Semicolon) {
		return
	}
	if p.lastKind == token.RBrace {
		return
	}
	p.err(diag.SynExpectSemicolon, p.getDiagnosticSpan(), "expected ';'")
}

func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	p.opts.CurrentErrors++
	if p.opts.Enough() && p.opts.CurrentErrors > p.opts.MaxErrors {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.lastSpan)
}

// unquote strips quotes and resolves the common escapes.
func unquote(text string) string {
	if len(text) < 2 {
		return ""
	}
	body := text[1 : len(text)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			out = append(out, c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		default:
			out = append(out, body[i])
		}
	}
	return string(out)
}
