package ast

// BinaryOp enumerates binary operator kinds.
type BinaryOp uint8

const (
	// Арифметические
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod

	// Битовые
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinUShr

	// Сравнения
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe

	// Логические
	BinAnd
	BinOr

	BinCoalesce // ??
	BinRange    // ...
)

var binaryOpText = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^", BinShl: "<<", BinShr: ">>", BinUShr: ">>>",
	BinEq: "==", BinNe: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinAnd: "&&", BinOr: "||", BinCoalesce: "??", BinRange: "...",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports ==, !=, <, <=, >, >=.
func (op BinaryOp) IsComparison() bool {
	return op >= BinEq && op <= BinGe
}

// IsBitwise reports &, |, ^ and shifts.
func (op BinaryOp) IsBitwise() bool {
	return op >= BinBitAnd && op <= BinUShr
}

// UnaryOp enumerates prefix and postfix operators.
type UnaryOp uint8

const (
	UnNeg UnaryOp = iota
	UnNot
	UnBitNot
	UnPreInc
	UnPreDec
	UnPostInc
	UnPostDec
)

func (op UnaryOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	case UnBitNot:
		return "~"
	case UnPreInc, UnPostInc:
		return "++"
	case UnPreDec, UnPostDec:
		return "--"
	}
	return "?"
}

// LitKind classifies literal nodes.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)
