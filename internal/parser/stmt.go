package parser

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

// parseBlock: `{ stmt* }`.
func (p *Parser) parseBlock() (ast.NodeID, bool) {
	open := p.advance() // {
	var stmts []ast.NodeID
	for !p.at_or(token.RBrace, token.EOF) {
		if p.opts.Enough() {
			return ast.NoNodeID, false
		}
		before := p.lx.Peek().Span
		var ok bool
		stmts, ok = p.parseStatementInto(stmts)
		if !ok {
			p.resyncStatement()
		}
		if p.lx.Peek().Span == before {
			p.advance()
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block"); !ok {
		return p.arenas.Nodes.NewBlock(p.spanFrom(open.Span), stmts), false
	}
	return p.arenas.Nodes.NewBlock(p.spanFrom(open.Span), stmts), true
}

// resyncStatement skips to the end of the current statement.
func (p *Parser) resyncStatement() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// parseStatement parses one statement; `var a, b` is wrapped into a block.
func (p *Parser) parseStatement() (ast.NodeID, bool) {
	start := p.lx.Peek().Span
	stmts, ok := p.parseStatementInto(nil)
	switch len(stmts) {
	case 0:
		return p.arenas.Nodes.NewBlock(p.spanFrom(start), nil), ok
	case 1:
		return stmts[0], ok
	}
	return p.arenas.Nodes.NewBlock(p.spanFrom(start), stmts), ok
}

func (p *Parser) parseStatementInto(stmts []ast.NodeID) ([]ast.NodeID, bool) {
	switch p.lx.Peek().Kind {
	case token.Semicolon:
		p.advance()
		return stmts, true
	case token.KwVar, token.KwFinal:
		vars, ok := p.parseVars()
		stmts = append(stmts, vars...)
		if ok {
			p.expectSemicolon()
		}
		return stmts, ok
	case token.KwStatic, token.KwInline:
		// static/inline локальные функции и переменные
		p.advance()
		return p.parseStatementInto(stmts)
	}
	expr, ok := p.parseExpr()
	if !ok {
		return stmts, false
	}
	stmts = append(stmts, expr)
	p.expectSemicolon()
	return stmts, true
}

// parseVars: `var a:Int = 1, b = 2`.
func (p *Parser) parseVars() ([]ast.NodeID, bool) {
	final := p.advance().Kind == token.KwFinal
	var out []ast.NodeID
	for {
		name, ok := p.expectIdent("expected variable name")
		if !ok {
			return out, false
		}
		data := ast.VarData{Name: name.Text, NameSpan: name.Span, Final: final}
		if p.eat(token.Colon) {
			if data.Type, ok = p.parseType(); !ok {
				return out, false
			}
		}
		if p.eat(token.Assign) {
			if data.Init, ok = p.parseExpr(); !ok {
				return out, false
			}
		}
		out = append(out, p.arenas.Nodes.NewVar(p.spanFrom(name.Span), data))
		if !p.eat(token.Comma) {
			return out, true
		}
	}
}

func (p *Parser) parseIf() (ast.NodeID, bool) {
	start := p.advance().Span // if
	cond, ok := p.parseParenCond("if")
	if !ok {
		return ast.NoNodeID, false
	}
	then, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	els := ast.NoNodeID
	if p.at(token.Semicolon) && p.lx.PeekN(1).Kind == token.KwElse {
		p.advance()
	}
	if p.eat(token.KwElse) {
		if els, ok = p.parseExpr(); !ok {
			return ast.NoNodeID, false
		}
	}
	return p.arenas.Nodes.NewIf(p.spanFrom(start), cond, then, els), true
}

func (p *Parser) parseParenCond(what string) (ast.NodeID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after "+what); !ok {
		return ast.NoNodeID, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after condition"); !ok {
		return ast.NoNodeID, false
	}
	return cond, true
}

func (p *Parser) parseWhile() (ast.NodeID, bool) {
	start := p.advance().Span // while
	cond, ok := p.parseParenCond("while")
	if !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewWhile(p.spanFrom(start), cond, body, false), true
}

func (p *Parser) parseDoWhile() (ast.NodeID, bool) {
	start := p.advance().Span // do
	body, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	p.eat(token.Semicolon)
	if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); !ok {
		return ast.NoNodeID, false
	}
	cond, ok := p.parseParenCond("while")
	if !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewWhile(p.spanFrom(start), cond, body, true), true
}

// parseFor: `for (v in it) body` или `for (k => v in it) body`.
func (p *Parser) parseFor() (ast.NodeID, bool) {
	start := p.advance().Span // for
	if _, ok := p.expect(token.LParen, diag.SynForBadHeader, "expected '(' after for"); !ok {
		return ast.NoNodeID, false
	}
	var data ast.ForData
	first, ok := p.expectIdent("expected loop variable")
	if !ok {
		return ast.NoNodeID, false
	}
	data.Value, data.ValueSpan = first.Text, first.Span
	if p.eat(token.FatArrow) {
		second, ok := p.expectIdent("expected value variable after '=>'")
		if !ok {
			return ast.NoNodeID, false
		}
		data.Key, data.KeySpan = first.Text, first.Span
		data.Value, data.ValueSpan = second.Text, second.Span
	}
	if _, ok := p.expect(token.KwIn, diag.SynForBadHeader, "expected 'in' in for header"); !ok {
		return ast.NoNodeID, false
	}
	if data.Iter, ok = p.parseExpr(); !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after for header"); !ok {
		return ast.NoNodeID, false
	}
	if data.Body, ok = p.parseExpr(); !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewFor(p.spanFrom(start), data), true
}

func (p *Parser) parseReturn() (ast.NodeID, bool) {
	start := p.advance().Span // return
	value := ast.NoNodeID
	if !p.at_or(token.Semicolon, token.RBrace, token.EOF) {
		var ok bool
		if value, ok = p.parseExpr(); !ok {
			return ast.NoNodeID, false
		}
	}
	return p.arenas.Nodes.NewWrap(ast.KindReturn, p.spanFrom(start), value), true
}

func (p *Parser) parseThrow() (ast.NodeID, bool) {
	start := p.advance().Span // throw
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewWrap(ast.KindThrow, p.spanFrom(start), value), true
}

func (p *Parser) parseTry() (ast.NodeID, bool) {
	start := p.advance().Span // try
	body, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	var catches []ast.NodeID
	for p.at(token.KwCatch) {
		cstart := p.advance().Span
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after catch"); !ok {
			return ast.NoNodeID, false
		}
		name, ok := p.expectIdent("expected exception variable")
		if !ok {
			return ast.NoNodeID, false
		}
		data := ast.CatchData{Name: name.Text, NameSpan: name.Span}
		if p.eat(token.Colon) {
			if data.Type, ok = p.parseType(); !ok {
				return ast.NoNodeID, false
			}
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after catch variable"); !ok {
			return ast.NoNodeID, false
		}
		if data.Body, ok = p.parseExpr(); !ok {
			return ast.NoNodeID, false
		}
		catches = append(catches, p.arenas.Nodes.NewCatch(p.spanFrom(cstart), data))
	}
	return p.arenas.Nodes.NewTry(p.spanFrom(start), body, catches), true
}

// parseSwitch: `switch subj { case P1, P2 if guard: ...; default: ... }`.
func (p *Parser) parseSwitch() (ast.NodeID, bool) {
	start := p.advance().Span // switch
	var data ast.SwitchData
	var ok bool
	if data.Subject, ok = p.parseExpr(); !ok {
		return ast.NoNodeID, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after switch subject"); !ok {
		return ast.NoNodeID, false
	}
	for !p.at_or(token.RBrace, token.EOF) {
		switch {
		case p.at(token.KwCase):
			c, ok := p.parseCase()
			if !ok {
				return ast.NoNodeID, false
			}
			data.Cases = append(data.Cases, c)
		case p.at(token.KwDefault):
			dstart := p.advance().Span
			if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after default"); !ok {
				return ast.NoNodeID, false
			}
			data.Default = p.parseCaseBody(dstart)
		default:
			p.err(diag.SynUnexpectedToken, p.getDiagnosticSpan(), "expected 'case' or 'default'")
			return ast.NoNodeID, false
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close switch"); !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewSwitch(p.spanFrom(start), data), true
}

func (p *Parser) parseCase() (ast.NodeID, bool) {
	start := p.advance().Span // case
	var data ast.CaseData
	for {
		pat, ok := p.parseExprPrec(precCoalesce)
		if !ok {
			return ast.NoNodeID, false
		}
		data.Patterns = append(data.Patterns, p.splitOrPattern(pat)...)
		if !p.eat(token.Comma) {
			break
		}
	}
	for _, pat := range data.Patterns {
		data.Captures = append(data.Captures, p.bindCaptures(pat)...)
	}
	if p.lx.Peek().Kind == token.KwIf {
		p.advance()
		guard, ok := p.parseParenCond("if")
		if !ok {
			return ast.NoNodeID, false
		}
		data.Guard = guard
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after case pattern"); !ok {
		return ast.NoNodeID, false
	}
	data.Body = p.parseCaseBody(start)
	return p.arenas.Nodes.NewCase(p.spanFrom(start), data), true
}

// splitOrPattern flattens `A | B` into separate patterns.
func (p *Parser) splitOrPattern(pat ast.NodeID) []ast.NodeID {
	if b, ok := p.arenas.Nodes.Binary(pat); ok && b.Op == ast.BinBitOr {
		return append(p.splitOrPattern(b.Left), p.splitOrPattern(b.Right)...)
	}
	return []ast.NodeID{pat}
}

// bindCaptures turns identifiers inside `Ctor(a, b)` into capture nodes.
// A lowercase identifier standing alone captures the whole subject.
func (p *Parser) bindCaptures(pat ast.NodeID) []ast.NodeID {
	nodes := p.arenas.Nodes
	if id, ok := nodes.Ident(pat); ok {
		if isCaptureName(id.Name) {
			node := nodes.Get(pat)
			*node = *nodes.Get(nodes.NewCapture(node.Span, ast.CaptureData{Name: id.Name, Index: -1}))
			return []ast.NodeID{pat}
		}
		return nil
	}
	call, ok := nodes.Call(pat)
	if !ok {
		return nil
	}
	ctor := ""
	if id, ok := nodes.Ident(call.Callee); ok {
		ctor = id.Name
	} else if m, ok := nodes.Member(call.Callee); ok {
		ctor = m.Name
	}
	var out []ast.NodeID
	for i, arg := range call.Args {
		if id, ok := nodes.Ident(arg); ok && id.Name != "_" {
			capture := nodes.NewCapture(nodes.Get(arg).Span, ast.CaptureData{Name: id.Name, Ctor: ctor, Index: i})
			call.Args[i] = capture
			out = append(out, capture)
			continue
		}
		out = append(out, p.bindCaptures(arg)...)
	}
	return out
}

func isCaptureName(name string) bool {
	if name == "" || name == "_" {
		return false
	}
	c := name[0]
	return c == '_' || (c >= 'a' && c <= 'z')
}

func (p *Parser) parseCaseBody(start source.Span) ast.NodeID {
	var stmts []ast.NodeID
	for !p.at_or(token.KwCase, token.KwDefault, token.RBrace, token.EOF) {
		before := p.lx.Peek().Span
		var ok bool
		stmts, ok = p.parseStatementInto(stmts)
		if !ok {
			p.resyncStatement()
		}
		if p.lx.Peek().Span == before {
			p.advance()
		}
	}
	return p.arenas.Nodes.NewBlock(p.spanFrom(start), stmts)
}
