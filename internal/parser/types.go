package parser

import (
	"strings"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

// parseType разбирает тип: путь с аргументами, функциональный тип в
// старой (`A->B`) или новой (`(a:A)->B`) записи, анонимную структуру.
func (p *Parser) parseType() (ast.TypeID, bool) {
	start := p.lx.Peek().Span
	if p.at(token.LParen) && p.looksLikeNewFuncType() {
		return p.parseNewFuncType()
	}

	optional := p.eat(token.Question)
	first, ok := p.parseTypeAtom()
	if !ok {
		return ast.NoTypeID, false
	}
	if !p.at(token.Arrow) {
		return first, true
	}

	// Int->String->Void: результат стоит последним
	parts := []ast.FuncTypeParam{{Type: first, Optional: optional}}
	for p.eat(token.Arrow) {
		opt := p.eat(token.Question)
		next, ok := p.parseTypeAtom()
		if !ok {
			return ast.NoTypeID, false
		}
		parts = append(parts, ast.FuncTypeParam{Type: next, Optional: opt})
	}
	ret := parts[len(parts)-1].Type
	params := parts[:len(parts)-1]
	if len(params) == 1 && p.isVoid(params[0].Type) {
		params = nil
	}
	return p.arenas.Types.New(ast.TypeExpr{
		Kind:   ast.TypeFunc,
		Span:   p.spanFrom(start),
		Params: params,
		Ret:    ret,
	}), true
}

func (p *Parser) isVoid(id ast.TypeID) bool {
	te := p.arenas.Types.Get(id)
	return te != nil && te.Kind == ast.TypePath && te.Name == "Void" && len(te.Args) == 0
}

// looksLikeNewFuncType scans to the matching `)` and checks for `->`.
func (p *Parser) looksLikeNewFuncType() bool {
	end, ok := p.matchingClose(0)
	if !ok {
		return false
	}
	return p.lx.PeekN(end+1).Kind == token.Arrow
}

// matchingClose returns the lookahead index of the bracket closing the one
// at index open.
func (p *Parser) matchingClose(open int) (int, bool) {
	depth := 0
	for i := open; ; i++ {
		switch p.lx.PeekN(i).Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 {
				return i, true
			}
		case token.EOF:
			return 0, false
		}
	}
}

func (p *Parser) parseNewFuncType() (ast.TypeID, bool) {
	start := p.advance().Span // (
	var params []ast.FuncTypeParam
	for !p.at_or(token.RParen, token.EOF) {
		param := ast.FuncTypeParam{Optional: p.eat(token.Question)}
		if p.at(token.Ident) && p.lx.PeekN(1).Kind == token.Colon {
			param.Name = p.advance().Text
			p.advance()
		}
		typ, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		param.Type = typ
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' in function type"); !ok {
		return ast.NoTypeID, false
	}
	p.advance() // ->
	ret, ok := p.parseType()
	if !ok {
		return ast.NoTypeID, false
	}
	return p.arenas.Types.New(ast.TypeExpr{
		Kind:   ast.TypeFunc,
		Span:   p.spanFrom(start),
		Params: params,
		Ret:    ret,
	}), true
}

func (p *Parser) parseTypeAtom() (ast.TypeID, bool) {
	switch p.lx.Peek().Kind {
	case token.LBrace:
		return p.parseAnonType()
	case token.LParen:
		p.advance()
		inner, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after type"); !ok {
			return ast.NoTypeID, false
		}
		return inner, true
	case token.Ident:
		return p.parseTypePath()
	}
	p.err(diag.SynExpectType, p.getDiagnosticSpan(), "expected type")
	return ast.NoTypeID, false
}

func (p *Parser) parseTypePath() (ast.TypeID, bool) {
	first := p.advance()
	start := first.Span
	parts := []string{first.Text}
	for p.at(token.Dot) && p.lx.PeekN(1).Kind == token.Ident {
		p.advance()
		parts = append(parts, p.advance().Text)
	}
	var args []ast.TypeID
	if p.eat(token.Lt) {
		for !p.at_or(token.Gt, token.EOF) {
			arg, ok := p.parseType()
			if !ok {
				return ast.NoTypeID, false
			}
			args = append(args, arg)
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.Gt, diag.SynExpectType, "expected '>' to close type arguments"); !ok {
			return ast.NoTypeID, false
		}
	}
	return p.arenas.Types.New(ast.TypeExpr{
		Kind: ast.TypePath,
		Span: p.spanFrom(start),
		Name: strings.Join(parts, "."),
		Args: args,
	}), true
}

// parseAnonType: `{ x:Int, ?y:String }` или в стиле класса
// `{ var x:Int; function f():Void; }`.
func (p *Parser) parseAnonType() (ast.TypeID, bool) {
	start := p.advance().Span // {
	var fields []ast.AnonField
	for !p.at_or(token.RBrace, token.EOF) {
		for p.at(token.Meta) || p.lx.Peek().Kind.Modifier() {
			p.advance()
		}
		field, ok := p.parseAnonField()
		if !ok {
			return ast.NoTypeID, false
		}
		fields = append(fields, field)
		if !p.eat(token.Comma) && !p.eat(token.Semicolon) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close structure type"); !ok {
		return ast.NoTypeID, false
	}
	return p.arenas.Types.New(ast.TypeExpr{
		Kind:   ast.TypeAnon,
		Span:   p.spanFrom(start),
		Fields: fields,
	}), true
}

func (p *Parser) parseAnonField() (ast.AnonField, bool) {
	var field ast.AnonField
	switch {
	case p.eat(token.KwVar):
	case p.eat(token.KwFinal):
		field.Final = true
	case p.eat(token.KwFunction):
		return p.parseAnonMethod()
	}
	field.Optional = p.eat(token.Question)
	name, ok := p.expectIdent("expected field name")
	if !ok {
		return field, false
	}
	field.Name, field.NameSpan = name.Text, name.Span
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
		return field, false
	}
	typ, ok := p.parseType()
	if !ok {
		return field, false
	}
	field.Type = typ
	return field, true
}

func (p *Parser) parseAnonMethod() (ast.AnonField, bool) {
	field := ast.AnonField{Method: true}
	name, ok := p.expectIdent("expected method name")
	if !ok {
		return field, false
	}
	field.Name, field.NameSpan = name.Text, name.Span
	start := name.Span
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after method name"); !ok {
		return field, false
	}
	var params []ast.FuncTypeParam
	for !p.at_or(token.RParen, token.EOF) {
		param := ast.FuncTypeParam{Optional: p.eat(token.Question)}
		pname, ok := p.expectIdent("expected parameter name")
		if !ok {
			return field, false
		}
		param.Name = pname.Text
		if p.eat(token.Colon) {
			if param.Type, ok = p.parseType(); !ok {
				return field, false
			}
		} else {
			param.Type = p.namedType("Dynamic", pname.Span)
		}
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return field, false
	}
	ret := p.namedType("Void", p.lastSpan)
	if p.eat(token.Colon) {
		if ret, ok = p.parseType(); !ok {
			return field, false
		}
	}
	field.Type = p.arenas.Types.New(ast.TypeExpr{
		Kind:   ast.TypeFunc,
		Span:   p.spanFrom(start),
		Params: params,
		Ret:    ret,
	})
	return field, true
}

// namedType allocates a synthetic path type such as Void or Dynamic.
func (p *Parser) namedType(name string, sp source.Span) ast.TypeID {
	return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypePath, Span: sp, Name: name})
}

// parseTypeParams: `<T, U:Constraint, V:(A, B)>`.
func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.eat(token.Lt) {
		return nil
	}
	var out []ast.TypeParam
	for !p.at_or(token.Gt, token.EOF) {
		name, ok := p.expectIdent("expected type parameter name")
		if !ok {
			break
		}
		tp := ast.TypeParam{Name: name.Text, Span: name.Span}
		if p.eat(token.Colon) {
			if p.at(token.LParen) && !p.looksLikeNewFuncType() {
				p.advance()
				for !p.at_or(token.RParen, token.EOF) {
					if c, ok := p.parseType(); ok {
						tp.Constraints = append(tp.Constraints, c)
					}
					if !p.eat(token.Comma) {
						break
					}
				}
				p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after constraints")
			} else if c, ok := p.parseType(); ok {
				tp.Constraints = append(tp.Constraints, c)
			}
		}
		out = append(out, tp)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt, diag.SynExpectType, "expected '>' to close type parameters")
	return out
}
