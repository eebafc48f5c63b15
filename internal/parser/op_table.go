package parser

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/token"
)

// Приоритеты бинарных операторов, от низкого к высокому.
const (
	precNone = iota
	precAssign
	precTernary
	precCoalesce
	precOr
	precAnd
	precRange
	precCompare
	precBitwise
	precShift
	precAdditive
	precMultiplicative
	precModulo
)

// binaryOp describes the operator at the current position. width is the
// number of tokens it spans: shifts are glued from adjacent `>` tokens.
type binaryOp struct {
	op         ast.BinaryOp
	prec       int
	rightAssoc bool
	width      int
}

var simpleBinary = map[token.Kind]binaryOp{
	token.QuestionQuestion: {ast.BinCoalesce, precCoalesce, true, 1},
	token.OrOr:             {ast.BinOr, precOr, false, 1},
	token.AndAnd:           {ast.BinAnd, precAnd, false, 1},
	token.DotDotDot:        {ast.BinRange, precRange, false, 1},
	token.EqEq:             {ast.BinEq, precCompare, false, 1},
	token.BangEq:           {ast.BinNe, precCompare, false, 1},
	token.Lt:               {ast.BinLt, precCompare, false, 1},
	token.LtEq:             {ast.BinLe, precCompare, false, 1},
	token.GtEq:             {ast.BinGe, precCompare, false, 1},
	token.Amp:              {ast.BinBitAnd, precBitwise, false, 1},
	token.Pipe:             {ast.BinBitOr, precBitwise, false, 1},
	token.Caret:            {ast.BinBitXor, precBitwise, false, 1},
	token.Shl:              {ast.BinShl, precShift, false, 1},
	token.Plus:             {ast.BinAdd, precAdditive, false, 1},
	token.Minus:            {ast.BinSub, precAdditive, false, 1},
	token.Star:             {ast.BinMul, precMultiplicative, false, 1},
	token.Slash:            {ast.BinDiv, precMultiplicative, false, 1},
	token.Percent:          {ast.BinMod, precModulo, false, 1},
}

// peekBinaryOp: смотрит на текущий оператор, склеивая `>` `>` в сдвиг.
func (p *Parser) peekBinaryOp() (binaryOp, bool) {
	tok := p.lx.Peek()
	if tok.Kind != token.Gt {
		info, ok := simpleBinary[tok.Kind]
		return info, ok
	}
	second := p.lx.PeekN(1)
	if second.Kind != token.Gt || !tok.Adjacent(second) {
		return binaryOp{ast.BinGt, precCompare, false, 1}, true
	}
	third := p.lx.PeekN(2)
	if third.Kind == token.Gt && second.Adjacent(third) {
		return binaryOp{ast.BinUShr, precShift, false, 3}, true
	}
	return binaryOp{ast.BinShr, precShift, false, 2}, true
}

var compoundAssign = map[token.Kind]ast.BinaryOp{
	token.PlusAssign:     ast.BinAdd,
	token.MinusAssign:    ast.BinSub,
	token.StarAssign:     ast.BinMul,
	token.SlashAssign:    ast.BinDiv,
	token.PercentAssign:  ast.BinMod,
	token.AmpAssign:      ast.BinBitAnd,
	token.PipeAssign:     ast.BinBitOr,
	token.CaretAssign:    ast.BinBitXor,
	token.ShlAssign:      ast.BinShl,
	token.QuestionAssign: ast.BinCoalesce,
}

// peekAssignOp reports an assignment operator; `>>=` arrives as `>` `>=`.
func (p *Parser) peekAssignOp() (op ast.BinaryOp, compound bool, width int, ok bool) {
	tok := p.lx.Peek()
	if tok.Kind == token.Assign {
		return 0, false, 1, true
	}
	if bop, isCompound := compoundAssign[tok.Kind]; isCompound {
		return bop, true, 1, true
	}
	if tok.Kind == token.Gt {
		second := p.lx.PeekN(1)
		if second.Kind == token.GtEq && tok.Adjacent(second) {
			return ast.BinShr, true, 2, true
		}
	}
	return 0, false, 0, false
}
