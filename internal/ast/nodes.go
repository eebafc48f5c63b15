package ast

import (
	"hxinfer/internal/source"
)

// Nodes manages allocation of expression and statement nodes.
type Nodes struct {
	Arena     *Arena[Node]
	Idents    *Arena[IdentData]
	Literals  *Arena[LiteralData]
	Regexes   *Arena[RegexData]
	Members   *Arena[MemberData]
	Calls     *Arena[CallData]
	Indices   *Arena[IndexData]
	News      *Arena[NewData]
	Arrays    *Arena[ArrayLitData]
	Maps      *Arena[MapLitData]
	Objects   *Arena[ObjectLitData]
	Functions *Arena[FunctionData]
	Params    *Arena[ParamData]
	Binaries  *Arena[BinaryData]
	Assigns   *Arena[AssignData]
	Unaries   *Arena[UnaryData]
	Ternaries *Arena[TernaryData]
	Casts     *Arena[CastData]
	Wraps     *Arena[WrapData]
	Blocks    *Arena[BlockData]
	Vars      *Arena[VarData]
	Ifs       *Arena[IfData]
	Whiles    *Arena[WhileData]
	Fors      *Arena[ForData]
	Switches  *Arena[SwitchData]
	Cases     *Arena[CaseData]
	Captures  *Arena[CaptureData]
	Tries     *Arena[TryData]
	Catches   *Arena[CatchData]
}

// NewNodes creates node arenas; capHint 0 falls back to 1<<8.
func NewNodes(capHint uint) *Nodes {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint / 4
	return &Nodes{
		Arena:     NewArena[Node](capHint),
		Idents:    NewArena[IdentData](capHint),
		Literals:  NewArena[LiteralData](capHint),
		Regexes:   NewArena[RegexData](0),
		Members:   NewArena[MemberData](small),
		Calls:     NewArena[CallData](small),
		Indices:   NewArena[IndexData](small),
		News:      NewArena[NewData](small),
		Arrays:    NewArena[ArrayLitData](small),
		Maps:      NewArena[MapLitData](0),
		Objects:   NewArena[ObjectLitData](small),
		Functions: NewArena[FunctionData](small),
		Params:    NewArena[ParamData](small),
		Binaries:  NewArena[BinaryData](small),
		Assigns:   NewArena[AssignData](small),
		Unaries:   NewArena[UnaryData](small),
		Ternaries: NewArena[TernaryData](0),
		Casts:     NewArena[CastData](0),
		Wraps:     NewArena[WrapData](small),
		Blocks:    NewArena[BlockData](small),
		Vars:      NewArena[VarData](small),
		Ifs:       NewArena[IfData](small),
		Whiles:    NewArena[WhileData](0),
		Fors:      NewArena[ForData](0),
		Switches:  NewArena[SwitchData](0),
		Cases:     NewArena[CaseData](0),
		Captures:  NewArena[CaptureData](0),
		Tries:     NewArena[TryData](0),
		Catches:   NewArena[CatchData](0),
	}
}

func (n *Nodes) new(kind Kind, span source.Span, payload uint32) NodeID {
	return NodeID(n.Arena.Allocate(Node{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the node with the given ID, nil for NoNodeID.
func (n *Nodes) Get(id NodeID) *Node {
	return n.Arena.Get(uint32(id))
}

// KindOf returns KindInvalid for missing nodes.
func (n *Nodes) KindOf(id NodeID) Kind {
	if node := n.Get(id); node != nil {
		return node.Kind
	}
	return KindInvalid
}

func payloadOf[T any](n *Nodes, arena *Arena[T], id NodeID, kinds ...Kind) (*T, bool) {
	node := n.Get(id)
	if node == nil {
		return nil, false
	}
	for _, k := range kinds {
		if node.Kind == k {
			return arena.Get(uint32(node.Payload)), true
		}
	}
	return nil, false
}

func (n *Nodes) NewIdent(span source.Span, name string) NodeID {
	return n.new(KindIdent, span, n.Idents.Allocate(IdentData{Name: name}))
}

func (n *Nodes) Ident(id NodeID) (*IdentData, bool) {
	return payloadOf(n, n.Idents, id, KindIdent)
}

func (n *Nodes) NewLiteral(span source.Span, data LiteralData) NodeID {
	return n.new(KindLiteral, span, n.Literals.Allocate(data))
}

func (n *Nodes) Literal(id NodeID) (*LiteralData, bool) {
	return payloadOf(n, n.Literals, id, KindLiteral)
}

func (n *Nodes) NewRegex(span source.Span, pattern, flags string) NodeID {
	return n.new(KindRegex, span, n.Regexes.Allocate(RegexData{Pattern: pattern, Flags: flags}))
}

func (n *Nodes) Regex(id NodeID) (*RegexData, bool) {
	return payloadOf(n, n.Regexes, id, KindRegex)
}

// NewBare creates nodes without payload: this, super, break, continue.
func (n *Nodes) NewBare(kind Kind, span source.Span) NodeID {
	return n.new(kind, span, 0)
}

func (n *Nodes) NewMember(span source.Span, data MemberData) NodeID {
	return n.new(KindMember, span, n.Members.Allocate(data))
}

func (n *Nodes) Member(id NodeID) (*MemberData, bool) {
	return payloadOf(n, n.Members, id, KindMember)
}

func (n *Nodes) NewCall(span source.Span, callee NodeID, args []NodeID) NodeID {
	return n.new(KindCall, span, n.Calls.Allocate(CallData{Callee: callee, Args: args}))
}

func (n *Nodes) Call(id NodeID) (*CallData, bool) {
	return payloadOf(n, n.Calls, id, KindCall)
}

func (n *Nodes) NewIndex(span source.Span, target, index NodeID) NodeID {
	return n.new(KindIndex, span, n.Indices.Allocate(IndexData{Target: target, Index: index}))
}

func (n *Nodes) Index(id NodeID) (*IndexData, bool) {
	return payloadOf(n, n.Indices, id, KindIndex)
}

func (n *Nodes) NewNew(span source.Span, typ TypeID, args []NodeID) NodeID {
	return n.new(KindNew, span, n.News.Allocate(NewData{Type: typ, Args: args}))
}

func (n *Nodes) New(id NodeID) (*NewData, bool) {
	return payloadOf(n, n.News, id, KindNew)
}

func (n *Nodes) NewArrayLit(span source.Span, elems []NodeID) NodeID {
	return n.new(KindArrayLit, span, n.Arrays.Allocate(ArrayLitData{Elems: elems}))
}

func (n *Nodes) ArrayLit(id NodeID) (*ArrayLitData, bool) {
	return payloadOf(n, n.Arrays, id, KindArrayLit)
}

func (n *Nodes) NewMapLit(span source.Span, keys, values []NodeID) NodeID {
	return n.new(KindMapLit, span, n.Maps.Allocate(MapLitData{Keys: keys, Values: values}))
}

func (n *Nodes) MapLit(id NodeID) (*MapLitData, bool) {
	return payloadOf(n, n.Maps, id, KindMapLit)
}

func (n *Nodes) NewObjectLit(span source.Span, fields []ObjectField) NodeID {
	return n.new(KindObjectLit, span, n.Objects.Allocate(ObjectLitData{Fields: fields}))
}

func (n *Nodes) ObjectLit(id NodeID) (*ObjectLitData, bool) {
	return payloadOf(n, n.Objects, id, KindObjectLit)
}

func (n *Nodes) NewFunction(span source.Span, data FunctionData) NodeID {
	return n.new(KindFunction, span, n.Functions.Allocate(data))
}

func (n *Nodes) Function(id NodeID) (*FunctionData, bool) {
	return payloadOf(n, n.Functions, id, KindFunction)
}

func (n *Nodes) NewParam(span source.Span, data ParamData) NodeID {
	return n.new(KindParam, span, n.Params.Allocate(data))
}

func (n *Nodes) Param(id NodeID) (*ParamData, bool) {
	return payloadOf(n, n.Params, id, KindParam)
}

func (n *Nodes) NewBinary(span source.Span, op BinaryOp, left, right NodeID) NodeID {
	return n.new(KindBinary, span, n.Binaries.Allocate(BinaryData{Op: op, Left: left, Right: right}))
}

func (n *Nodes) Binary(id NodeID) (*BinaryData, bool) {
	return payloadOf(n, n.Binaries, id, KindBinary)
}

func (n *Nodes) NewAssign(span source.Span, data AssignData) NodeID {
	return n.new(KindAssign, span, n.Assigns.Allocate(data))
}

func (n *Nodes) Assign(id NodeID) (*AssignData, bool) {
	return payloadOf(n, n.Assigns, id, KindAssign)
}

func (n *Nodes) NewUnary(span source.Span, op UnaryOp, operand NodeID) NodeID {
	return n.new(KindUnary, span, n.Unaries.Allocate(UnaryData{Op: op, Operand: operand}))
}

func (n *Nodes) Unary(id NodeID) (*UnaryData, bool) {
	return payloadOf(n, n.Unaries, id, KindUnary)
}

func (n *Nodes) NewTernary(span source.Span, cond, then, els NodeID) NodeID {
	return n.new(KindTernary, span, n.Ternaries.Allocate(TernaryData{Cond: cond, Then: then, Else: els}))
}

func (n *Nodes) Ternary(id NodeID) (*TernaryData, bool) {
	return payloadOf(n, n.Ternaries, id, KindTernary)
}

// NewCast creates KindCast or KindTypeCheck nodes.
func (n *Nodes) NewCast(kind Kind, span source.Span, expr NodeID, typ TypeID) NodeID {
	return n.new(kind, span, n.Casts.Allocate(CastData{Expr: expr, Type: typ}))
}

func (n *Nodes) Cast(id NodeID) (*CastData, bool) {
	return payloadOf(n, n.Casts, id, KindCast, KindTypeCheck)
}

// NewWrap creates Paren, Untyped, Return and Throw nodes.
func (n *Nodes) NewWrap(kind Kind, span source.Span, inner NodeID) NodeID {
	return n.new(kind, span, n.Wraps.Allocate(WrapData{Inner: inner}))
}

func (n *Nodes) Wrap(id NodeID) (*WrapData, bool) {
	return payloadOf(n, n.Wraps, id, KindParen, KindUntyped, KindReturn, KindThrow)
}

func (n *Nodes) NewBlock(span source.Span, stmts []NodeID) NodeID {
	return n.new(KindBlock, span, n.Blocks.Allocate(BlockData{Stmts: stmts}))
}

func (n *Nodes) Block(id NodeID) (*BlockData, bool) {
	return payloadOf(n, n.Blocks, id, KindBlock)
}

func (n *Nodes) NewVar(span source.Span, data VarData) NodeID {
	return n.new(KindVar, span, n.Vars.Allocate(data))
}

func (n *Nodes) Var(id NodeID) (*VarData, bool) {
	return payloadOf(n, n.Vars, id, KindVar)
}

func (n *Nodes) NewIf(span source.Span, cond, then, els NodeID) NodeID {
	return n.new(KindIf, span, n.Ifs.Allocate(IfData{Cond: cond, Then: then, Else: els}))
}

func (n *Nodes) If(id NodeID) (*IfData, bool) {
	return payloadOf(n, n.Ifs, id, KindIf)
}

func (n *Nodes) NewWhile(span source.Span, cond, body NodeID, doWhile bool) NodeID {
	return n.new(KindWhile, span, n.Whiles.Allocate(WhileData{Cond: cond, Body: body, DoWhile: doWhile}))
}

func (n *Nodes) While(id NodeID) (*WhileData, bool) {
	return payloadOf(n, n.Whiles, id, KindWhile)
}

func (n *Nodes) NewFor(span source.Span, data ForData) NodeID {
	return n.new(KindFor, span, n.Fors.Allocate(data))
}

func (n *Nodes) For(id NodeID) (*ForData, bool) {
	return payloadOf(n, n.Fors, id, KindFor)
}

func (n *Nodes) NewSwitch(span source.Span, data SwitchData) NodeID {
	return n.new(KindSwitch, span, n.Switches.Allocate(data))
}

func (n *Nodes) Switch(id NodeID) (*SwitchData, bool) {
	return payloadOf(n, n.Switches, id, KindSwitch)
}

func (n *Nodes) NewCase(span source.Span, data CaseData) NodeID {
	return n.new(KindCase, span, n.Cases.Allocate(data))
}

func (n *Nodes) Case(id NodeID) (*CaseData, bool) {
	return payloadOf(n, n.Cases, id, KindCase)
}

func (n *Nodes) NewCapture(span source.Span, data CaptureData) NodeID {
	return n.new(KindCapture, span, n.Captures.Allocate(data))
}

func (n *Nodes) Capture(id NodeID) (*CaptureData, bool) {
	return payloadOf(n, n.Captures, id, KindCapture)
}

func (n *Nodes) NewTry(span source.Span, body NodeID, catches []NodeID) NodeID {
	return n.new(KindTry, span, n.Tries.Allocate(TryData{Body: body, Catches: catches}))
}

func (n *Nodes) Try(id NodeID) (*TryData, bool) {
	return payloadOf(n, n.Tries, id, KindTry)
}

func (n *Nodes) NewCatch(span source.Span, data CatchData) NodeID {
	return n.new(KindCatch, span, n.Catches.Allocate(data))
}

func (n *Nodes) Catch(id NodeID) (*CatchData, bool) {
	return payloadOf(n, n.Catches, id, KindCatch)
}
