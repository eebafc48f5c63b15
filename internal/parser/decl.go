package parser

import (
	"strings"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

// declHeader collects what precedes a declaration keyword.
type declHeader struct {
	meta    []ast.Meta
	extern  bool
	private bool
	final   bool
	start   source.Span
}

func (p *Parser) parseMetas() []ast.Meta {
	var out []ast.Meta
	for p.at(token.Meta) {
		tok := p.advance()
		m := ast.Meta{Name: strings.TrimPrefix(strings.TrimPrefix(tok.Text, "@"), ":"), Span: tok.Span}
		if p.at(token.LParen) && tok.Adjacent(p.lx.Peek()) {
			m.Args = p.parseMetaArgs()
			m.Span = p.spanFrom(tok.Span)
		}
		out = append(out, m)
	}
	return out
}

// parseMetaArgs keeps the raw text of each comma-separated argument.
func (p *Parser) parseMetaArgs() []string {
	p.advance() // (
	var args []string
	var cur strings.Builder
	depth := 0
	for !p.at(token.EOF) {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 {
				p.advance()
				if cur.Len() > 0 {
					args = append(args, cur.String())
				}
				return args
			}
			depth--
		case token.Comma:
			if depth == 0 {
				p.advance()
				args = append(args, cur.String())
				cur.Reset()
				continue
			}
		}
		cur.WriteString(p.advance().Text)
	}
	return args
}

func (p *Parser) parseDecl() (ast.DeclID, bool) {
	h := declHeader{start: p.lx.Peek().Span}
	h.meta = p.parseMetas()
modifiers:
	for {
		switch {
		case p.eat(token.KwExtern):
			h.extern = true
		case p.eat(token.KwPrivate):
			h.private = true
		case p.eat(token.KwFinal):
			h.final = true
		default:
			break modifiers
		}
	}
	switch p.lx.Peek().Kind {
	case token.KwClass:
		p.advance()
		return p.parseClass(h, ast.DeclClass)
	case token.KwInterface:
		p.advance()
		return p.parseClass(h, ast.DeclInterface)
	case token.KwEnum:
		p.advance()
		if p.eat(token.KwAbstract) {
			return p.parseAbstract(h, true)
		}
		return p.parseEnum(h)
	case token.KwAbstract:
		p.advance()
		return p.parseAbstract(h, ast.HasMeta(h.meta, "enum"))
	case token.KwTypedef:
		p.advance()
		return p.parseTypedef(h)
	}
	p.err(diag.SynUnexpectedTopLevel, p.getDiagnosticSpan(), "expected class, interface, enum, abstract or typedef")
	return ast.NoDeclID, false
}

func (p *Parser) newDecl(h declHeader, kind ast.DeclKind) (ast.DeclID, bool) {
	name, ok := p.expectIdent("expected type name")
	if !ok {
		return ast.NoDeclID, false
	}
	d := ast.Decl{
		Kind:     kind,
		Name:     name.Text,
		NameSpan: name.Span,
		Span:     h.start,
		File:     p.file,
		Meta:     h.meta,
		Extern:   h.extern,
		Private:  h.private,
	}
	d.TypeParams = p.parseTypeParams()
	return p.arenas.NewDecl(d), true
}

func (p *Parser) parseClass(h declHeader, kind ast.DeclKind) (ast.DeclID, bool) {
	id, ok := p.newDecl(h, kind)
	if !ok {
		return id, false
	}
	for p.at_or(token.KwExtends, token.KwImplements) {
		implements := p.advance().Kind == token.KwImplements
		for {
			typ, ok := p.parseTypePath()
			if !ok {
				return id, false
			}
			d := p.arenas.Decl(id)
			if implements {
				d.Implements = append(d.Implements, typ)
			} else {
				d.Extends = append(d.Extends, typ)
			}
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if !p.parseMembers(id) {
		return id, false
	}
	p.arenas.Decl(id).Span = p.spanFrom(h.start)
	return id, true
}

func (p *Parser) parseAbstract(h declHeader, enumAbstract bool) (ast.DeclID, bool) {
	id, ok := p.newDecl(h, ast.DeclAbstract)
	if !ok {
		return id, false
	}
	d := p.arenas.Decl(id)
	d.EnumAbstract = enumAbstract
	if p.eat(token.LParen) {
		under, ok := p.parseType()
		if !ok {
			return id, false
		}
		p.arenas.Decl(id).Underlying = under
		p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after underlying type")
	}
	for p.lx.Peek().IsWord("from") || p.lx.Peek().IsWord("to") {
		to := p.advance().Text == "to"
		typ, ok := p.parseType()
		if !ok {
			return id, false
		}
		d := p.arenas.Decl(id)
		if to {
			d.To = append(d.To, typ)
		} else {
			d.From = append(d.From, typ)
		}
	}
	if !p.parseMembers(id) {
		return id, false
	}
	p.arenas.Decl(id).Span = p.spanFrom(h.start)
	return id, true
}

func (p *Parser) parseTypedef(h declHeader) (ast.DeclID, bool) {
	id, ok := p.newDecl(h, ast.DeclTypedef)
	if !ok {
		return id, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in typedef"); !ok {
		return id, false
	}
	under, ok := p.parseType()
	if !ok {
		return id, false
	}
	d := p.arenas.Decl(id)
	d.Underlying = under
	p.eat(token.Semicolon)
	d.Span = p.spanFrom(h.start)
	return id, true
}

func (p *Parser) parseEnum(h declHeader) (ast.DeclID, bool) {
	id, ok := p.newDecl(h, ast.DeclEnum)
	if !ok {
		return id, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open enum body"); !ok {
		return id, false
	}
	for !p.at_or(token.RBrace, token.EOF) {
		meta := p.parseMetas()
		name, ok := p.expectIdent("expected enum constructor")
		if !ok {
			return id, false
		}
		m := ast.Member{
			Kind:     ast.MemberEnumCtor,
			Name:     name.Text,
			NameSpan: name.Span,
			Decl:     id,
			Meta:     meta,
			Static:   true,
		}
		m.TypeParams = p.parseTypeParams()
		if p.at(token.LParen) {
			m.Params = p.parseParams()
		}
		p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after enum constructor")
		m.Span = p.spanFrom(name.Span)
		p.arenas.NewMember(m)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close enum"); !ok {
		return id, false
	}
	p.arenas.Decl(id).Span = p.spanFrom(h.start)
	return id, true
}

// parseMembers разбирает тело класса, интерфейса или абстракта.
func (p *Parser) parseMembers(decl ast.DeclID) bool {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open body"); !ok {
		return false
	}
	for !p.at_or(token.RBrace, token.EOF) {
		if p.opts.Enough() {
			return false
		}
		before := p.lx.Peek().Span
		if !p.parseMember(decl) {
			p.resyncMember()
		}
		if p.lx.Peek().Span == before {
			p.advance()
		}
	}
	_, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close body")
	return ok
}

// resyncMember skips to the start of the next member or the end of the body.
func (p *Parser) resyncMember() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.KwVar, token.KwFunction, token.Meta:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseMember(decl ast.DeclID) bool {
	start := p.lx.Peek().Span
	m := ast.Member{Decl: decl, Meta: p.parseMetas()}
	for p.lx.Peek().Kind.Modifier() || p.at(token.KwFinal) {
		switch p.advance().Kind {
		case token.KwStatic:
			m.Static = true
		case token.KwInline:
			m.Inline = true
		case token.KwOverride:
			m.Override = true
		case token.KwFinal:
			m.Final = true
		}
	}
	switch {
	case p.eat(token.KwFunction):
		m.Kind = ast.MemberMethod
		return p.parseMethod(m, start)
	case p.eat(token.KwVar):
	case m.Final:
	default:
		p.err(diag.SynUnexpectedToken, p.getDiagnosticSpan(), "expected 'var', 'final' or 'function'")
		return false
	}
	m.Kind = ast.MemberField
	m.Optional = ast.HasMeta(m.Meta, "optional")
	return p.parseField(m, start)
}

func (p *Parser) parseField(m ast.Member, start source.Span) bool {
	name, ok := p.expectIdent("expected field name")
	if !ok {
		return false
	}
	m.Name, m.NameSpan = name.Text, name.Span
	// свойство var x(get, set):T, модификаторы доступа не влияют на тип
	if p.at(token.LParen) {
		if end, ok := p.matchingClose(0); ok {
			for range end + 1 {
				p.advance()
			}
		}
	}
	if p.eat(token.Colon) {
		if m.Type, ok = p.parseType(); !ok {
			return false
		}
	}
	id := p.arenas.NewMember(m)
	if p.eat(token.Assign) {
		p.member = id
		init, ok := p.parseExpr()
		p.member = ast.NoMemberID
		if !ok {
			return false
		}
		p.arenas.Nodes.Link(init, id)
		p.arenas.Member(id).Init = init
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after field")
	p.arenas.Member(id).Span = p.spanFrom(start)
	return true
}

func (p *Parser) parseMethod(m ast.Member, start source.Span) bool {
	var name token.Token
	if p.at(token.KwNew) {
		name = p.advance()
		name.Text = "new"
	} else {
		var ok bool
		if name, ok = p.expectIdent("expected method name"); !ok {
			return false
		}
	}
	m.Name, m.NameSpan = name.Text, name.Span
	m.TypeParams = p.parseTypeParams()
	if !p.at(token.LParen) {
		p.err(diag.SynUnexpectedToken, p.getDiagnosticSpan(), "expected '(' after method name")
		return false
	}
	m.Params = p.parseParams()
	if p.eat(token.Colon) {
		ret, ok := p.parseType()
		if !ok {
			return false
		}
		m.Ret = ret
	}
	id := p.arenas.NewMember(m)
	for _, param := range m.Params {
		p.arenas.Nodes.Link(param, id)
	}
	if p.eat(token.Semicolon) {
		p.arenas.Member(id).Span = p.spanFrom(start)
		return true
	}
	p.member = id
	body, ok := p.parseFunctionBody()
	p.member = ast.NoMemberID
	if !ok {
		return false
	}
	p.arenas.Nodes.Link(body, id)
	mm := p.arenas.Member(id)
	mm.Body = body
	mm.Span = p.spanFrom(start)
	return true
}

// parseFunctionBody: блок или одиночное выражение (`function f() return 1;`).
func (p *Parser) parseFunctionBody() (ast.NodeID, bool) {
	if p.at(token.LBrace) {
		return p.parseBlock()
	}
	body, ok := p.parseStatement()
	return body, ok
}

// parseParams разбирает `(a:Int, ?b = 1, ...rest:String)`.
func (p *Parser) parseParams() []ast.NodeID {
	p.advance() // (
	var out []ast.NodeID
	for !p.at_or(token.RParen, token.EOF) {
		param, ok := p.parseParam()
		if !ok {
			break
		}
		out = append(out, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters")
	for i, id := range out {
		if d, _ := p.arenas.Nodes.Param(id); d.Rest && i != len(out)-1 {
			p.err(diag.SynRestMustBeLast, p.arenas.Nodes.Get(id).Span, "rest parameter must be last")
		}
	}
	return out
}

func (p *Parser) parseParam() (ast.NodeID, bool) {
	start := p.lx.Peek().Span
	p.parseMetas()
	var data ast.ParamData
	data.Rest = p.eat(token.DotDotDot)
	data.Optional = p.eat(token.Question)
	name, ok := p.expectIdent("expected parameter name")
	if !ok {
		return ast.NoNodeID, false
	}
	data.Name, data.NameSpan = name.Text, name.Span
	if p.eat(token.Colon) {
		if data.Type, ok = p.parseType(); !ok {
			return ast.NoNodeID, false
		}
	}
	if p.eat(token.Assign) {
		if data.Default, ok = p.parseExprPrec(precTernary); !ok {
			return ast.NoNodeID, false
		}
	}
	return p.arenas.Nodes.NewParam(p.spanFrom(start), data), true
}
