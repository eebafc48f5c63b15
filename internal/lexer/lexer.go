package lexer

import (
	"unicode"
	"unicode/utf8"

	"hxinfer/internal/diag"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   []token.Token
	// prev is the last significant token; decides whether `~/` starts a regex.
	prev token.Kind
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		prev:   token.Invalid,
	}
}

// Next возвращает следующий значимый токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if len(lx.look) > 0 {
		tok := lx.look[0]
		lx.look = lx.look[1:]
		return tok
	}
	tok := lx.scan()
	lx.prev = tok.Kind
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	return lx.PeekN(0)
}

// PeekN looks n tokens past the next one without consuming anything.
func (lx *Lexer) PeekN(n int) token.Token {
	for len(lx.look) <= n {
		tok := lx.scan()
		lx.prev = tok.Kind
		lx.look = append(lx.look, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if n >= len(lx.look) {
		return lx.look[len(lx.look)-1]
	}
	return lx.look[n]
}

// All drains the lexer. Used by `hxinfer tokenize`.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) scan() token.Token {
	lx.skipTrivia()
	if lx.cursor.EOF() {
		sp := source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
		return token.Token{Kind: token.EOF, Span: sp}
	}

	ch := lx.cursor.Peek()
	switch {
	case isIdentStartByte(ch) || ch >= utf8.RuneSelf:
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '.' && isDec(lx.cursor.PeekAt(1)):
		return lx.scanNumber()
	case ch == '"' || ch == '\'':
		return lx.scanString(ch)
	case ch == '~' && lx.cursor.PeekAt(1) == '/' && lx.regexAllowed():
		return lx.scanRegex()
	case ch == '@':
		return lx.scanMeta()
	default:
		return lx.scanOperatorOrPunct()
	}
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// regexAllowed: `~/` after an operand is bitwise-not of a division, which
// Haxe source never writes; everywhere else it opens a regex literal.
func (lx *Lexer) regexAllowed() bool {
	switch lx.prev {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit, token.RParen, token.RBracket:
		return false
	default:
		return true
	}
}

func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.cursor.Bump()
		case ch == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case ch == '/' && lx.cursor.PeekAt(1) == '*':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.cursor.Bump()
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.report(diag.LexUnterminatedBlock, lx.cursor.SpanFrom(start), "unterminated block comment")
			}
		case ch == '#':
			// conditional compilation lines (#if, #end) are ignored
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	first := true
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < utf8.RuneSelf {
			if !isIdentContinueByte(b) || (first && isDec(b)) {
				break
			}
			lx.cursor.Bump()
			first = false
			continue
		}
		r, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
		if !(r == '_' || unicode.IsLetter(r) || (!first && unicode.IsDigit(r))) {
			break
		}
		lx.cursor.Off += uint32(size) //nolint:gosec // size <= utf8.UTFMax
		first = false
	}
	if lx.cursor.Mark() == start {
		// байт не начинает идентификатор
		r, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
		lx.cursor.Off += uint32(max(size, 1)) //nolint:gosec // size <= utf8.UTFMax
		tok := lx.emit(token.Invalid, start)
		lx.report(diag.LexUnknownChar, tok.Span, "unknown character "+string(r))
		return tok
	}
	tok := lx.emit(token.Ident, start)
	if kw, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = kw
	}
	return tok
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	if lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		digits := 0
		for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
			digits++
		}
		tok := lx.emit(token.IntLit, start)
		if digits == 0 {
			lx.report(diag.LexBadNumber, tok.Span, "hex literal without digits")
		}
		return tok
	}

	kind := token.IntLit
	lx.eatDigits()
	// `0...5` is a range, not a float
	if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' && !isIdentStartByte(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.eatDigits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			kind = token.FloatLit
			lx.eatDigits()
		} else {
			lx.cursor.Reset(mark)
		}
	}
	return lx.emit(kind, start)
}

func (lx *Lexer) eatDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == quote {
			return lx.emit(token.StringLit, start)
		}
	}
	tok := lx.emit(token.StringLit, start)
	lx.report(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanRegex reads ~/pattern/flags.
func (lx *Lexer) scanRegex() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // ~
	lx.cursor.Bump() // /
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			break
		}
		if b == '/' {
			for isIdentStartByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			return lx.emit(token.RegexLit, start)
		}
	}
	tok := lx.emit(token.RegexLit, start)
	lx.report(diag.LexUnterminatedRegex, tok.Span, "unterminated regular expression")
	return tok
}

func (lx *Lexer) scanMeta() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // @
	lx.cursor.Eat(':')
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return lx.emit(token.Meta, start)
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
