package lexer

import (
	"hxinfer/internal/diag"
	"hxinfer/internal/token"
)

type opEntry struct {
	text string
	kind token.Kind
}

// Жадность: сначала 3-символьные, затем 2-символьные, затем 1-символьные.
// `>>` намеренно отсутствует: парсер склеивает соседние `>`.
var multiOps = []opEntry{
	{"...", token.DotDotDot},
	{"<<=", token.ShlAssign},
	{"??=", token.QuestionAssign},
	{"->", token.Arrow},
	{"=>", token.FatArrow},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{"++", token.PlusPlus},
	{"--", token.MinusMinus},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
	{"??", token.QuestionQuestion},
	{"?.", token.QuestionDot},
}

var singleOps = map[byte]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'=': token.Assign, '<': token.Lt, '>': token.Gt, '&': token.Amp, '|': token.Pipe,
	'^': token.Caret, '~': token.Tilde, '!': token.Bang, '?': token.Question, ':': token.Colon,
	';': token.Semicolon, ',': token.Comma, '.': token.Dot, '(': token.LParen, ')': token.RParen,
	'{': token.LBrace, '}': token.RBrace, '[': token.LBracket, ']': token.RBracket,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	rest := lx.file.Content[lx.cursor.Off:]
	for _, op := range multiOps {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			lx.cursor.Off += uint32(len(op.text)) //nolint:gosec // operators are at most 3 bytes
			return lx.emit(op.kind, start)
		}
	}
	ch := lx.cursor.Bump()
	if k, ok := singleOps[ch]; ok {
		return lx.emit(k, start)
	}
	tok := lx.emit(token.Invalid, start)
	lx.report(diag.LexUnknownChar, tok.Span, "unknown character "+tok.Text)
	return tok
}
