package ast

import (
	"hxinfer/internal/source"
)

// Kind enumerates every expression and statement node. The list is closed:
// evaluators dispatch on it through a table sized KindCount.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Выражения
	KindIdent
	KindLiteral
	KindRegex
	KindThis
	KindSuper
	KindMember
	KindCall
	KindIndex
	KindNew
	KindArrayLit
	KindMapLit
	KindObjectLit
	KindFunction
	KindBinary
	KindAssign
	KindUnary
	KindTernary
	KindCast
	KindTypeCheck
	KindParen
	KindUntyped

	// Инструкции
	KindBlock
	KindVar
	KindIf
	KindWhile
	KindFor
	KindSwitch
	KindReturn
	KindBreak
	KindContinue
	KindThrow
	KindTry

	// Вспомогательные узлы-объявления
	KindParam
	KindCase
	KindCapture
	KindCatch

	KindCount
)

var kindNames = [...]string{
	KindInvalid: "Invalid", KindIdent: "Ident", KindLiteral: "Literal", KindRegex: "Regex",
	KindThis: "This", KindSuper: "Super", KindMember: "Member", KindCall: "Call", KindIndex: "Index",
	KindNew: "New", KindArrayLit: "ArrayLit", KindMapLit: "MapLit", KindObjectLit: "ObjectLit",
	KindFunction: "Function", KindBinary: "Binary", KindAssign: "Assign", KindUnary: "Unary",
	KindTernary: "Ternary", KindCast: "Cast", KindTypeCheck: "TypeCheck", KindParen: "Paren",
	KindUntyped: "Untyped", KindBlock: "Block", KindVar: "Var", KindIf: "If", KindWhile: "While",
	KindFor: "For", KindSwitch: "Switch", KindReturn: "Return", KindBreak: "Break",
	KindContinue: "Continue", KindThrow: "Throw", KindTry: "Try", KindParam: "Param",
	KindCase: "Case", KindCapture: "Capture", KindCatch: "Catch",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind?"
}

// Node is one expression or statement. Parent and Owner are filled by
// Nodes.Link once a member body is complete.
type Node struct {
	Kind    Kind
	Span    source.Span
	Parent  NodeID
	Owner   MemberID
	Payload PayloadID
}

type IdentData struct {
	Name string
}

type LiteralData struct {
	Kind  LitKind
	Text  string // исходный текст
	Value string // у строк без кавычек и escape-последовательностей
}

type RegexData struct {
	Pattern string
	Flags   string
}

type MemberData struct {
	Target   NodeID
	Name     string
	NameSpan source.Span
	Safe     bool // ?.
}

type CallData struct {
	Callee NodeID
	Args   []NodeID
}

type IndexData struct {
	Target NodeID
	Index  NodeID
}

type NewData struct {
	Type TypeID
	Args []NodeID
}

type ArrayLitData struct {
	Elems []NodeID
}

type MapLitData struct {
	Keys   []NodeID
	Values []NodeID
}

type ObjectField struct {
	Name     string
	NameSpan source.Span
	Value    NodeID
}

type ObjectLitData struct {
	Fields []ObjectField
}

type FunctionData struct {
	Name       string // пусто для анонимных
	TypeParams []TypeParam
	Params     []NodeID // KindParam
	Ret        TypeID
	Body       NodeID
	Arrow      bool
}

type ParamData struct {
	Name     string
	NameSpan source.Span
	Type     TypeID
	Default  NodeID
	Optional bool
	Rest     bool
}

type BinaryData struct {
	Op    BinaryOp
	Left  NodeID
	Right NodeID
}

type AssignData struct {
	Op       BinaryOp // meaningful only when Compound
	Compound bool
	Target   NodeID
	Value    NodeID
}

type UnaryData struct {
	Op      UnaryOp
	Operand NodeID
}

type TernaryData struct {
	Cond NodeID
	Then NodeID
	Else NodeID
}

// CastData: Type is NoTypeID for `cast e`.
type CastData struct {
	Expr NodeID
	Type TypeID
}

// WrapData is shared by Paren, Untyped, Return and Throw.
type WrapData struct {
	Inner NodeID
}

type BlockData struct {
	Stmts []NodeID
}

type VarData struct {
	Name     string
	NameSpan source.Span
	Type     TypeID
	Init     NodeID
	Final    bool
}

type IfData struct {
	Cond NodeID
	Then NodeID
	Else NodeID
}

type WhileData struct {
	Cond    NodeID
	Body    NodeID
	DoWhile bool
}

// ForData: Key is empty unless the loop is `for (k => v in it)`.
type ForData struct {
	Key       string
	KeySpan   source.Span
	Value     string
	ValueSpan source.Span
	Iter      NodeID
	Body      NodeID
}

type SwitchData struct {
	Subject NodeID
	Cases   []NodeID // KindCase
	Default NodeID
}

type CaseData struct {
	Patterns []NodeID
	Guard    NodeID
	Body     NodeID
	Captures []NodeID // KindCapture
}

// CaptureData binds a constructor argument in `case Ctor(name):`.
type CaptureData struct {
	Name  string
	Ctor  string
	Index int
}

type TryData struct {
	Body    NodeID
	Catches []NodeID // KindCatch
}

type CatchData struct {
	Name     string
	NameSpan source.Span
	Type     TypeID
	Body     NodeID
}
