package eval

import (
	"context"
	"fmt"

	"hxinfer/internal/ast"
	"hxinfer/internal/compat"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/symbols"
	"hxinfer/internal/trace"
	"hxinfer/internal/types"
)

type Options struct {
	// Cache memoizes inferred member types across queries; nil disables it.
	Cache *Cache
	// QuietGuards suppresses constant-guard warnings and unreachable hints.
	QuietGuards bool
}

// Evaluator is immutable after New and safe for concurrent queries as long
// as the declaration table is not modified.
type Evaluator struct {
	model  *types.Model
	tab    *symbols.Table
	nodes  *ast.Nodes
	compat *compat.Engine
	opts   Options
}

func New(m *types.Model, opts Options) *Evaluator {
	e := &Evaluator{
		model: m,
		tab:   m.Tab,
		nodes: m.Tab.B.Nodes,
		opts:  opts,
	}
	e.compat = compat.New(m, e)
	return e
}

func (e *Evaluator) Model() *types.Model { return e.model }

// Compat returns a compatibility engine whose structural comparisons type
// untagged members through this evaluator.
func (e *Evaluator) Compat() *compat.Engine { return e.compat }

// Evaluate computes the type of node. res may be nil; scope supplies locals
// already known to the caller and may be nil, in which case locals are
// found through their declarations. A nil reporter makes the query silent.
func (e *Evaluator) Evaluate(ctx context.Context, node ast.NodeID, res *generics.Resolver, scope *Scope, rep diag.Reporter) types.Holder {
	q := e.newQuery(ctx, rep)
	if scope != nil {
		q.scope = scope
	}
	return q.eval(node, res)
}

// MemberType types member as seen on owner. Untagged fields and methods are
// inferred from their initializers and bodies.
func (e *Evaluator) MemberType(member ast.MemberID, owner types.Type) types.Holder {
	return e.newQuery(context.Background(), nil).MemberType(member, owner)
}

// CanAssign is the compatibility judgment with member inference enabled.
func (e *Evaluator) CanAssign(to, from types.Holder, actx *compat.Context) bool {
	return e.compat.CanAssign(to, from, actx)
}

// handler evaluates one node kind.
type handler func(q *query, id ast.NodeID, res *generics.Resolver) types.Holder

var handlers [ast.KindCount]handler

func init() {
	handlers = [ast.KindCount]handler{
		ast.KindIdent:     (*query).ident,
		ast.KindLiteral:   (*query).literal,
		ast.KindRegex:     (*query).regex,
		ast.KindThis:      (*query).this,
		ast.KindSuper:     (*query).super,
		ast.KindMember:    (*query).member,
		ast.KindCall:      (*query).call,
		ast.KindIndex:     (*query).index,
		ast.KindNew:       (*query).newExpr,
		ast.KindArrayLit:  (*query).arrayLit,
		ast.KindMapLit:    (*query).mapLit,
		ast.KindObjectLit: (*query).objectLit,
		ast.KindFunction:  (*query).function,
		ast.KindBinary:    (*query).binary,
		ast.KindAssign:    (*query).assign,
		ast.KindUnary:     (*query).unary,
		ast.KindTernary:   (*query).ternary,
		ast.KindCast:      (*query).cast,
		ast.KindTypeCheck: (*query).typeCheck,
		ast.KindParen:     (*query).paren,
		ast.KindUntyped:   (*query).untyped,
		ast.KindBlock:     (*query).block,
		ast.KindVar:       (*query).varStmt,
		ast.KindIf:        (*query).ifStmt,
		ast.KindWhile:     (*query).while,
		ast.KindFor:       (*query).forStmt,
		ast.KindSwitch:    (*query).switchStmt,
		ast.KindReturn:    (*query).returnStmt,
		ast.KindBreak:     (*query).jump,
		ast.KindContinue:  (*query).jump,
		ast.KindThrow:     (*query).throw,
		ast.KindTry:       (*query).try,
		ast.KindParam:     (*query).param,
		ast.KindCase:      (*query).caseClause,
		ast.KindCapture:   (*query).capture,
		ast.KindCatch:     (*query).catch,
	}
}

// query is the state of one evaluation request. It never outlives the call
// that created it and is not shared between goroutines.
type query struct {
	e      *Evaluator
	m      *types.Model
	tab    *symbols.Table
	nodes  *ast.Nodes
	cmp    *compat.Engine
	ctx    context.Context
	rep    diag.Reporter
	tracer trace.Tracer
	scope  *Scope

	evaluating map[ast.NodeID]struct{}
	members    map[ast.MemberID]struct{}
	expect     map[ast.NodeID]types.Type
	// returns collects `return` values per function being walked.
	returns [][]types.Holder
	// guardHits counts recursion short-circuits; results computed while it
	// grows are partial and are not cached.
	guardHits int
	depth     int
	onVar     func(id ast.NodeID, h types.Holder)
}

func (e *Evaluator) newQuery(ctx context.Context, rep diag.Reporter) *query {
	if ctx == nil {
		ctx = context.Background()
	}
	q := &query{
		e:          e,
		m:          e.model,
		tab:        e.tab,
		nodes:      e.nodes,
		ctx:        ctx,
		rep:        rep,
		tracer:     trace.FromContext(ctx),
		scope:      NewScope(),
		evaluating: make(map[ast.NodeID]struct{}),
		members:    make(map[ast.MemberID]struct{}),
		expect:     make(map[ast.NodeID]types.Type),
	}
	q.cmp = e.compat.WithMembers(q)
	return q
}

func (q *query) cancelled() bool {
	return q.ctx.Err() != nil
}

func (q *query) eval(id ast.NodeID, res *generics.Resolver) types.Holder {
	node := q.nodes.Get(id)
	if node == nil || q.cancelled() {
		return types.UnknownHolder()
	}
	if _, busy := q.evaluating[id]; busy {
		q.guardHits++
		return types.UnknownHolder()
	}
	h := handlers[node.Kind]
	if h == nil {
		trace.Error(q.tracer, "eval.unhandled", node.Kind.String())
		return types.UnknownHolder()
	}

	q.depth++
	var span *trace.Span
	if q.tracer.Level() >= trace.LevelDebug && q.depth <= 20 {
		span = trace.Begin(q.tracer, trace.ScopeQuery, "eval", 0)
		span.WithExtra("kind", node.Kind.String())
	}
	q.evaluating[id] = struct{}{}
	out := h(q, id, res)
	delete(q.evaluating, id)
	q.depth--
	if span != nil {
		span.WithExtra("result", out.String())
		span.End("")
	}

	if !out.Origin().IsValid() {
		out = out.WithOrigin(id)
	}
	return out
}

// evalExpecting evaluates id with want as the type its consumer expects.
func (q *query) evalExpecting(id ast.NodeID, res *generics.Resolver, want types.Type) types.Holder {
	if !id.IsValid() {
		return types.UnknownHolder()
	}
	if want.IsUnknown() {
		return q.eval(id, res)
	}
	prev, had := q.expect[id]
	q.expect[id] = want
	h := q.eval(id, res)
	if had {
		q.expect[id] = prev
	} else {
		delete(q.expect, id)
	}
	return h
}

// quiet evaluates id without reporting diagnostics.
func (q *query) quiet(id ast.NodeID, res *generics.Resolver) types.Holder {
	rep, onVar := q.rep, q.onVar
	q.rep, q.onVar = nil, nil
	h := q.eval(id, res)
	q.rep, q.onVar = rep, onVar
	return h
}

// detached evaluates id silently in a fresh scope: the declaration of a
// local is typed without the bindings of the use site.
func (q *query) detached(id ast.NodeID, res *generics.Resolver) types.Holder {
	scope := q.scope
	q.scope = NewScope()
	h := q.quiet(id, res)
	q.scope = scope
	return h
}

func (q *query) report(sev diag.Severity, code diag.Code, id ast.NodeID, format string, args ...any) *diag.ReportBuilder {
	node := q.nodes.Get(id)
	if q.rep == nil || node == nil {
		return nil
	}
	return diag.NewReportBuilder(q.rep, sev, code, node.Span, fmt.Sprintf(format, args...)).WithNode(uint32(id))
}

func (q *query) errorf(code diag.Code, id ast.NodeID, format string, args ...any) {
	q.report(diag.SevError, code, id, format, args...).Emit()
}

func (q *query) warnf(code diag.Code, id ast.NodeID, format string, args ...any) {
	q.report(diag.SevWarning, code, id, format, args...).Emit()
}

// ownerDecl returns the declaration whose member contains id.
func (q *query) ownerDecl(id ast.NodeID) ast.DeclID {
	node := q.nodes.Get(id)
	if node == nil {
		return ast.NoDeclID
	}
	if mm := q.tab.Member(node.Owner); mm != nil {
		return mm.Decl
	}
	return ast.NoDeclID
}

// tagParams lists the generic names visible at id: the owning member's and
// those of enclosing function literals.
func (q *query) tagParams(id ast.NodeID) types.Params {
	var p types.Params
	if node := q.nodes.Get(id); node != nil {
		p = q.m.MemberParams(node.Owner)
	}
	for fn := q.nodes.EnclosingFunction(id); fn.IsValid(); fn = q.nodes.EnclosingFunction(fn) {
		d, _ := q.nodes.Function(fn)
		for _, tp := range d.TypeParams {
			p.Names = append(p.Names, tp.Name)
		}
	}
	if q.nodes.KindOf(id) == ast.KindFunction {
		d, _ := q.nodes.Function(id)
		for _, tp := range d.TypeParams {
			p.Names = append(p.Names, tp.Name)
		}
	}
	return p
}

// fromTag converts a type tag written at id.
func (q *query) fromTag(tid ast.TypeID, at ast.NodeID) types.Type {
	if !tid.IsValid() {
		return types.Unknown()
	}
	return q.m.FromTag(tid, q.tagParams(at))
}

// compatContext opens a mismatch collector scoped to the declaration of at.
func (q *query) compatContext(at ast.NodeID) *compat.Context {
	return &compat.Context{Scope: q.ownerDecl(at)}
}

// checkAssign reports when to does not accept from. Structural mismatches
// are reported member by member; fix, when set, is attached to the main
// diagnostic.
func (q *query) checkAssign(to, from types.Holder, at ast.NodeID, code diag.Code, fix func(*diag.ReportBuilder)) bool {
	actx := q.compatContext(at)
	if q.cmp.CanAssign(to, from, actx) {
		return true
	}
	if q.rep == nil {
		return false
	}
	if actx.HasMismatches() {
		for _, mm := range actx.Missing {
			q.errorf(diag.SemaMissingMember, at, "Object requires field %s", mm.Name)
		}
		for _, wt := range actx.WrongType {
			node := at
			if wt.FromNode.IsValid() {
				node = wt.FromNode
			}
			q.errorf(diag.SemaWrongMemberType, node, "Field %s has type %s, should be %s", wt.Name, wt.FromText, wt.ToText)
		}
		return false
	}
	b := q.report(diag.SevError, code, at, "Incompatible types: %s should be %s", from.Type(), to.Type())
	if fix != nil {
		fix(b)
	}
	b.Emit()
	return false
}
