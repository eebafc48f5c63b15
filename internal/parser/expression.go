package parser

import (
	"strings"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/token"
)

func (p *Parser) parseExpr() (ast.NodeID, bool) {
	return p.parseExprPrec(precAssign)
}

// parseExprPrec: Pratt-цикл: присваивание и тернарный оператор правоассоциативны.
func (p *Parser) parseExprPrec(minPrec int) (ast.NodeID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	start := p.arenas.Nodes.Get(left).Span
	for {
		if minPrec <= precAssign {
			if op, compound, width, isAssign := p.peekAssignOp(); isAssign {
				for range width {
					p.advance()
				}
				value, ok := p.parseExprPrec(precAssign)
				if !ok {
					return ast.NoNodeID, false
				}
				left = p.arenas.Nodes.NewAssign(p.spanFrom(start), ast.AssignData{
					Op: op, Compound: compound, Target: left, Value: value,
				})
				continue
			}
		}
		if minPrec <= precTernary && p.at(token.Question) {
			p.advance()
			then, ok := p.parseExprPrec(precAssign)
			if !ok {
				return ast.NoNodeID, false
			}
			if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' in ternary expression"); !ok {
				return ast.NoNodeID, false
			}
			els, ok := p.parseExprPrec(precTernary)
			if !ok {
				return ast.NoNodeID, false
			}
			left = p.arenas.Nodes.NewTernary(p.spanFrom(start), left, then, els)
			continue
		}
		info, isBinary := p.peekBinaryOp()
		if !isBinary || info.prec < minPrec {
			return left, true
		}
		for range info.width {
			p.advance()
		}
		next := info.prec + 1
		if info.rightAssoc {
			next = info.prec
		}
		right, ok := p.parseExprPrec(next)
		if !ok {
			return ast.NoNodeID, false
		}
		left = p.arenas.Nodes.NewBinary(p.spanFrom(start), info.op, left, right)
	}
}

var prefixOps = map[token.Kind]ast.UnaryOp{
	token.Minus:      ast.UnNeg,
	token.Bang:       ast.UnNot,
	token.Tilde:      ast.UnBitNot,
	token.PlusPlus:   ast.UnPreInc,
	token.MinusMinus: ast.UnPreDec,
}

func (p *Parser) parseUnaryExpr() (ast.NodeID, bool) {
	if op, ok := prefixOps[p.lx.Peek().Kind]; ok {
		start := p.advance().Span
		operand, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		return p.arenas.Nodes.NewUnary(p.spanFrom(start), op, operand), true
	}
	primary, ok := p.parsePrimary()
	if !ok {
		return ast.NoNodeID, false
	}
	return p.parsePostfix(primary)
}

func (p *Parser) parsePostfix(expr ast.NodeID) (ast.NodeID, bool) {
	nodes := p.arenas.Nodes
	start := nodes.Get(expr).Span
	for {
		switch p.lx.Peek().Kind {
		case token.Dot, token.QuestionDot:
			safe := p.advance().Kind == token.QuestionDot
			name := p.lx.Peek()
			if name.Kind != token.Ident && !name.Kind.IsKeyword() {
				p.err(diag.SynExpectIdentifier, p.getDiagnosticSpan(), "expected field name after '.'")
				return ast.NoNodeID, false
			}
			p.advance()
			expr = nodes.NewMember(p.spanFrom(start), ast.MemberData{
				Target: expr, Name: name.Text, NameSpan: name.Span, Safe: safe,
			})
		case token.LParen:
			args, ok := p.parseArgs()
			if !ok {
				return ast.NoNodeID, false
			}
			expr = nodes.NewCall(p.spanFrom(start), expr, args)
		case token.LBracket:
			p.advance()
			index, ok := p.parseExpr()
			if !ok {
				return ast.NoNodeID, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' after index"); !ok {
				return ast.NoNodeID, false
			}
			expr = nodes.NewIndex(p.spanFrom(start), expr, index)
		case token.PlusPlus, token.MinusMinus:
			op := ast.UnPostInc
			if p.advance().Kind == token.MinusMinus {
				op = ast.UnPostDec
			}
			expr = nodes.NewUnary(p.spanFrom(start), op, expr)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parseArgs() ([]ast.NodeID, bool) {
	p.advance() // (
	args := []ast.NodeID{}
	for !p.at_or(token.RParen, token.EOF) {
		arg, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after arguments"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() (ast.NodeID, bool) {
	nodes := p.arenas.Nodes
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		if p.lx.PeekN(1).Kind == token.Arrow {
			return p.parseArrowFunction()
		}
		p.advance()
		return nodes.NewIdent(tok.Span, tok.Text), true
	case token.IntLit:
		p.advance()
		return nodes.NewLiteral(tok.Span, ast.LiteralData{Kind: ast.LitInt, Text: tok.Text, Value: tok.Text}), true
	case token.FloatLit:
		p.advance()
		return nodes.NewLiteral(tok.Span, ast.LiteralData{Kind: ast.LitFloat, Text: tok.Text, Value: tok.Text}), true
	case token.StringLit:
		p.advance()
		return nodes.NewLiteral(tok.Span, ast.LiteralData{Kind: ast.LitString, Text: tok.Text, Value: unquote(tok.Text)}), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return nodes.NewLiteral(tok.Span, ast.LiteralData{Kind: ast.LitBool, Text: tok.Text, Value: tok.Text}), true
	case token.KwNull:
		p.advance()
		return nodes.NewLiteral(tok.Span, ast.LiteralData{Kind: ast.LitNull, Text: tok.Text, Value: tok.Text}), true
	case token.RegexLit:
		p.advance()
		pattern, flags := splitRegex(tok.Text)
		return nodes.NewRegex(tok.Span, pattern, flags), true
	case token.KwThis:
		p.advance()
		return nodes.NewBare(ast.KindThis, tok.Span), true
	case token.KwSuper:
		p.advance()
		return nodes.NewBare(ast.KindSuper, tok.Span), true
	case token.KwBreak:
		p.advance()
		return nodes.NewBare(ast.KindBreak, tok.Span), true
	case token.KwContinue:
		p.advance()
		return nodes.NewBare(ast.KindContinue, tok.Span), true
	case token.LParen:
		if end, ok := p.matchingClose(0); ok && p.lx.PeekN(end+1).Kind == token.Arrow {
			return p.parseArrowFunction()
		}
		return p.parseParen()
	case token.LBracket:
		return p.parseArrayOrMap()
	case token.LBrace:
		if p.looksLikeObject() {
			return p.parseObject()
		}
		return p.parseBlock()
	case token.KwNew:
		return p.parseNew()
	case token.KwCast:
		return p.parseCast()
	case token.KwUntyped:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		return nodes.NewWrap(ast.KindUntyped, p.spanFrom(tok.Span), inner), true
	case token.KwFunction:
		return p.parseFunctionLiteral()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDoWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwTry:
		return p.parseTry()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwThrow:
		return p.parseThrow()
	case token.KwVar, token.KwFinal:
		// `var` в позиции выражения: if (x) var a = 1;
		vars, ok := p.parseVars()
		if !ok || len(vars) == 0 {
			return ast.NoNodeID, false
		}
		if len(vars) == 1 {
			return vars[0], true
		}
		return nodes.NewBlock(p.spanFrom(tok.Span), vars), true
	}
	p.err(diag.SynExpectExpression, p.getDiagnosticSpan(), "expected expression, found "+tok.Kind.String())
	return ast.NoNodeID, false
}

// splitRegex разбирает `~/pattern/flags`.
func splitRegex(text string) (pattern, flags string) {
	body := strings.TrimPrefix(text, "~/")
	end := strings.LastIndexByte(body, '/')
	if end < 0 {
		return body, ""
	}
	return body[:end], body[end+1:]
}

// parseParen: `(e)` или проверка типа `(e : T)`.
func (p *Parser) parseParen() (ast.NodeID, bool) {
	start := p.advance().Span // (
	inner, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	if p.eat(token.Colon) {
		typ, ok := p.parseType()
		if !ok {
			return ast.NoNodeID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after type check"); !ok {
			return ast.NoNodeID, false
		}
		return p.arenas.Nodes.NewCast(ast.KindTypeCheck, p.spanFrom(start), inner, typ), true
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewWrap(ast.KindParen, p.spanFrom(start), inner), true
}

// parseArrayOrMap: `[a, b]` или `[k => v]`.
func (p *Parser) parseArrayOrMap() (ast.NodeID, bool) {
	start := p.advance().Span // [
	var elems, values []ast.NodeID
	isMap := false
	for !p.at_or(token.RBracket, token.EOF) {
		elem, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		elems = append(elems, elem)
		if len(elems) == 1 && p.at(token.FatArrow) {
			isMap = true
		}
		if isMap {
			if _, ok := p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>' in map literal"); !ok {
				return ast.NoNodeID, false
			}
			value, ok := p.parseExpr()
			if !ok {
				return ast.NoNodeID, false
			}
			values = append(values, value)
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"); !ok {
		return ast.NoNodeID, false
	}
	if isMap {
		return p.arenas.Nodes.NewMapLit(p.spanFrom(start), elems, values), true
	}
	return p.arenas.Nodes.NewArrayLit(p.spanFrom(start), elems), true
}

// looksLikeObject: `{}`, `{ name :` или `{ "name" :`.
func (p *Parser) looksLikeObject() bool {
	next := p.lx.PeekN(1)
	if next.Kind == token.RBrace {
		return true
	}
	return (next.Kind == token.Ident || next.Kind == token.StringLit) && p.lx.PeekN(2).Kind == token.Colon
}

func (p *Parser) parseObject() (ast.NodeID, bool) {
	start := p.advance().Span // {
	var fields []ast.ObjectField
	for !p.at_or(token.RBrace, token.EOF) {
		name := p.advance()
		if name.Kind != token.Ident && name.Kind != token.StringLit {
			p.err(diag.SynExpectIdentifier, name.Span, "expected field name in object literal")
			return ast.NoNodeID, false
		}
		fieldName := name.Text
		if name.Kind == token.StringLit {
			fieldName = unquote(name.Text)
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
			return ast.NoNodeID, false
		}
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		fields = append(fields, ast.ObjectField{Name: fieldName, NameSpan: name.Span, Value: value})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close object literal"); !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewObjectLit(p.spanFrom(start), fields), true
}

func (p *Parser) parseNew() (ast.NodeID, bool) {
	start := p.advance().Span // new
	if !p.at(token.Ident) {
		p.err(diag.SynExpectType, p.getDiagnosticSpan(), "expected type after 'new'")
		return ast.NoNodeID, false
	}
	typ, ok := p.parseTypePath()
	if !ok {
		return ast.NoNodeID, false
	}
	if !p.at(token.LParen) {
		p.err(diag.SynUnexpectedToken, p.getDiagnosticSpan(), "expected '(' after type in new expression")
		return ast.NoNodeID, false
	}
	args, ok := p.parseArgs()
	if !ok {
		return ast.NoNodeID, false
	}
	return p.arenas.Nodes.NewNew(p.spanFrom(start), typ, args), true
}

// parseCast: `cast(e, T)` или небезопасный `cast e`.
func (p *Parser) parseCast() (ast.NodeID, bool) {
	start := p.advance().Span // cast
	if !p.at(token.LParen) {
		inner, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoNodeID, false
		}
		return p.arenas.Nodes.NewCast(ast.KindCast, p.spanFrom(start), inner, ast.NoTypeID), true
	}
	p.advance()
	inner, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	typ := ast.NoTypeID
	if p.eat(token.Comma) {
		if typ, ok = p.parseType(); !ok {
			return ast.NoNodeID, false
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after cast"); !ok {
		return ast.NoNodeID, false
	}
	if !typ.IsValid() {
		// cast(e) без типа означает тот же небезопасный cast
		paren := p.arenas.Nodes.NewWrap(ast.KindParen, p.spanFrom(start), inner)
		return p.arenas.Nodes.NewCast(ast.KindCast, p.spanFrom(start), paren, ast.NoTypeID), true
	}
	return p.arenas.Nodes.NewCast(ast.KindCast, p.spanFrom(start), inner, typ), true
}

func (p *Parser) parseFunctionLiteral() (ast.NodeID, bool) {
	start := p.advance().Span // function
	var data ast.FunctionData
	if p.at(token.Ident) {
		data.Name = p.advance().Text
	}
	data.TypeParams = p.parseTypeParams()
	if !p.at(token.LParen) {
		p.err(diag.SynUnexpectedToken, p.getDiagnosticSpan(), "expected '(' in function literal")
		return ast.NoNodeID, false
	}
	data.Params = p.parseParams()
	if p.eat(token.Colon) {
		ret, ok := p.parseType()
		if !ok {
			return ast.NoNodeID, false
		}
		data.Ret = ret
	}
	body, ok := p.parseExpr()
	if !ok {
		return ast.NoNodeID, false
	}
	data.Body = body
	return p.arenas.Nodes.NewFunction(p.spanFrom(start), data), true
}

// parseArrowFunction: `x -> e`, `(a, b:Int) -> e`, `() -> e`.
func (p *Parser) parseArrowFunction() (ast.NodeID, bool) {
	start := p.lx.Peek().Span
	data := ast.FunctionData{Arrow: true}
	if p.at(token.Ident) {
		name := p.advance()
		data.Params = []ast.NodeID{p.arenas.Nodes.NewParam(name.Span, ast.ParamData{Name: name.Text, NameSpan: name.Span})}
	} else {
		data.Params = p.parseParams()
	}
	if _, ok := p.expect(token.Arrow, diag.SynUnexpectedToken, "expected '->'"); !ok {
		return ast.NoNodeID, false
	}
	body, ok := p.parseExprPrec(precAssign)
	if !ok {
		return ast.NoNodeID, false
	}
	data.Body = body
	return p.arenas.Nodes.NewFunction(p.spanFrom(start), data), true
}
