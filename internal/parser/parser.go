package parser

import (
	"slices"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/lexer"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	src      *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена
	lastKind token.Kind
	// member is the member whose body is being parsed; 0 outside bodies.
	member ast.MemberID
}

// ParseFile: входная точка для разбора одного файла.
func ParseFile(src *source.File, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:     lexer.New(src, lexer.Options{Reporter: opts.Reporter}),
		arenas: arenas,
		src:    src,
		opts:   opts,
	}
	p.file = arenas.NewFile(src.ID, source.Span{File: src.ID, Start: 0, End: uint32(len(src.Content))}) //nolint:gosec // checked by FileSet
	p.lastSpan = source.Span{File: src.ID}
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

// ParseExpression parses a standalone expression (repl, tests). The
// returned node is linked with no owner.
func ParseExpression(src *source.File, arenas *ast.Builder, opts Options) (ast.NodeID, Result) {
	p := Parser{
		lx:     lexer.New(src, lexer.Options{Reporter: opts.Reporter}),
		arenas: arenas,
		src:    src,
		opts:   opts,
	}
	p.file = arenas.NewFile(src.ID, source.Span{File: src.ID, Start: 0, End: uint32(len(src.Content))}) //nolint:gosec // checked by FileSet
	p.lastSpan = source.Span{File: src.ID}
	var stmts []ast.NodeID
	start := p.lx.Peek().Span
	for !p.at(token.EOF) {
		before := p.lx.Peek().Span
		var ok bool
		if stmts, ok = p.parseStatementInto(stmts); !ok {
			p.resyncStatement()
		}
		if p.lx.Peek().Span == before {
			p.advance()
		}
	}
	var root ast.NodeID
	if len(stmts) == 1 {
		root = stmts[0]
	} else {
		root = p.arenas.Nodes.NewBlock(start.Cover(p.lastSpan), stmts)
	}
	p.arenas.Nodes.Link(root, ast.NoMemberID)
	return root, Result{File: p.file, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) at_or(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems: основной цикл верхнего уровня.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		if p.opts.Enough() {
			return
		}
		switch p.lx.Peek().Kind {
		case token.KwPackage, token.KwImport, token.KwUsing:
			p.skipUntilSemicolon()
			continue
		}
		declID, ok := p.parseDecl()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushDecl(p.file, declID)
	}
}

// resyncTop skips to the next token that can start a declaration.
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth <= 0 {
				p.advance()
				return
			}
		case token.KwClass, token.KwInterface, token.KwEnum, token.KwAbstract, token.KwTypedef, token.Meta:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) skipUntilSemicolon() {
	for !p.at_or(token.Semicolon, token.EOF) {
		p.advance()
	}
	p.advance()
}
