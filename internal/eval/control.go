package eval

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/compat"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/types"
)

// guard evaluates a condition. constant reports a Bool constant, held in
// value.
func (q *query) guard(cond ast.NodeID, res *generics.Resolver) (value, constant bool) {
	h := q.eval(cond, res)
	t := q.m.Follow(h.Type())
	if !t.IsUnknownOrDynamic() && !t.IsBool() && !t.IsTypeParam() {
		q.errorf(diag.SemaGuardNotBool, cond, "%s should be Bool", h.Type())
		return false, false
	}
	c := h.Constant()
	if c.Kind != types.ConstBool {
		return false, false
	}
	return c.Bool, true
}

// constantGuard reports a constant condition and the branch it makes dead.
func (q *query) constantGuard(at, cond, dead ast.NodeID, keyword string) {
	if q.e.opts.QuietGuards {
		return
	}
	q.warnf(diag.SemaConstantGuard, cond, "%s expression constant", keyword)
	if dead.IsValid() {
		q.report(diag.SevInfo, diag.SemaUnreachable, dead, "Unreachable code").
			WithNote(q.nodes.Get(at).Span, "condition is always the same").
			Emit()
	}
}

func (q *query) ifStmt(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.If(id)
	if v, ok := q.guard(d.Cond, res); ok {
		dead := d.Else
		if !v {
			dead = d.Then
		}
		q.constantGuard(id, d.Cond, dead, "If")
	}
	want, _ := q.expected(id, res)
	then := q.evalExpecting(d.Then, res, want)
	if !d.Else.IsValid() {
		return q.cmp.Unify(then, types.Hold(types.Void()), compat.RulePreferVoid)
	}
	els := q.evalExpecting(d.Else, res, want)
	return q.cmp.Unify(then, els, compat.RuleDefault)
}

func (q *query) ternary(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Ternary(id)
	v, constant := q.guard(d.Cond, res)
	want, _ := q.expected(id, res)
	then := q.evalExpecting(d.Then, res, want)
	els := q.evalExpecting(d.Else, res, want)
	if constant {
		dead := d.Else
		if !v {
			dead = d.Then
		}
		q.constantGuard(id, d.Cond, dead, "Ternary")
		if v {
			return then
		}
		return els
	}
	return q.cmp.Unify(then.WithoutConstant(), els.WithoutConstant(), compat.RuleDefault)
}

func (q *query) while(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.While(id)
	q.guard(d.Cond, res)
	q.eval(d.Body, res)
	return types.Hold(types.Void())
}

func (q *query) forStmt(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.For(id)
	key, value := q.forBindings(id, res)
	q.scope.Push()
	if d.Key != "" {
		q.scope.Define(d.Key, key)
	}
	q.scope.Define(d.Value, value)
	q.eval(d.Body, res)
	q.scope.Pop()
	return types.Hold(types.Void())
}

// forBindings types the loop variables of a for node. Ranges, arrays,
// strings and maps are known; anything else goes through its iterator or
// keyValueIterator method.
func (q *query) forBindings(id ast.NodeID, res *generics.Resolver) (key, value types.Holder) {
	d, _ := q.nodes.For(id)
	it := q.eval(d.Iter, res)
	t := q.m.Follow(res.Apply(it.Type()))
	switch {
	case t.IsUnknown():
		return types.UnknownHolder(), types.UnknownHolder()
	case t.IsDynamic():
		return types.Hold(types.Dynamic()), types.Hold(types.Dynamic())
	case t.IsNamed("IntIterator"):
		v := types.Hold(q.m.Int())
		if c := it.Constant(); c.Kind == types.ConstRange {
			v = v.WithConstant(c)
		}
		return types.Hold(q.m.Int()), v
	case q.m.IsArray(t):
		return types.Hold(q.m.Int()), types.Hold(t.Specific(0))
	case t.IsString():
		return types.Hold(q.m.Int()), types.Hold(q.m.Int())
	case q.m.IsMap(t):
		return types.Hold(t.Specific(0)), types.Hold(t.Specific(1))
	}
	if d.Key != "" {
		pair := q.next(q.call0(t, "keyValueIterator", res), res)
		return q.access(pair.Type(), "key", res), q.access(pair.Type(), "value", res)
	}
	if iter := q.call0(t, "iterator", res); !iter.IsUnknown() {
		return types.UnknownHolder(), q.next(iter, res)
	}
	return types.UnknownHolder(), q.next(types.Hold(t), res)
}

// call0 is the result of calling an argument-less method name on t.
func (q *query) call0(t types.Type, name string, res *generics.Resolver) types.Holder {
	fn := q.access(t, name, res).Type()
	if !fn.IsFunction() {
		return types.UnknownHolder()
	}
	return types.Hold(fn.Ret())
}

func (q *query) next(iter types.Holder, res *generics.Resolver) types.Holder {
	if iter.IsUnknown() {
		return iter
	}
	return q.call0(iter.Type(), "next", res)
}

// switchStmt unifies case bodies. Without default the switch has a value
// only when it covers every constructor of an enum subject.
func (q *query) switchStmt(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Switch(id)
	subject := q.eval(d.Subject, res)
	want, _ := q.expected(id, res)
	values := make([]types.Holder, 0, len(d.Cases)+1)
	for _, c := range d.Cases {
		values = append(values, q.evalExpecting(c, res, want))
	}
	if d.Default.IsValid() {
		values = append(values, q.evalExpecting(d.Default, res, want))
		return q.cmp.UnifyAll(values, compat.RuleDefault)
	}
	if q.exhaustive(subject.Type(), d.Cases) {
		return q.cmp.UnifyAll(values, compat.RuleDefault)
	}
	return types.Hold(types.Void())
}

func (q *query) exhaustive(subject types.Type, cases []ast.NodeID) bool {
	t := q.m.Follow(subject)
	if t.IsEnumValue() {
		t = t.EnumType()
	}
	if !q.m.IsEnum(t) {
		return false
	}
	covered := map[string]bool{}
	for _, c := range cases {
		d, _ := q.nodes.Case(c)
		for _, p := range d.Patterns {
			if name := patternCtor(q.nodes, p); name != "" {
				covered[name] = true
			}
		}
	}
	for _, m := range q.tab.Decl(t.Decl()).Members {
		if mm := q.tab.Member(m); mm.Kind == ast.MemberEnumCtor && !covered[mm.Name] {
			return false
		}
	}
	return true
}

// patternCtor is the constructor a case pattern names, or "".
func patternCtor(nodes *ast.Nodes, p ast.NodeID) string {
	if c, ok := nodes.Call(p); ok {
		p = c.Callee
	}
	if id, ok := nodes.Ident(p); ok {
		return id.Name
	}
	if m, ok := nodes.Member(p); ok {
		return m.Name
	}
	return ""
}

func (q *query) caseClause(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Case(id)
	q.scope.Push()
	defer q.scope.Pop()
	for _, c := range d.Captures {
		cd, _ := q.nodes.Capture(c)
		q.scope.Define(cd.Name, q.captureType(c, res))
	}
	for _, p := range d.Patterns {
		q.quiet(p, res)
	}
	if d.Guard.IsValid() {
		q.guard(d.Guard, res)
	}
	want, _ := q.expected(id, res)
	return q.evalExpecting(d.Body, res, want)
}

func (q *query) capture(id ast.NodeID, res *generics.Resolver) types.Holder {
	return q.captureType(id, res)
}

// captureType types a name bound by a case pattern: the whole subject, or
// the constructor argument at the capture's position.
func (q *query) captureType(id ast.NodeID, res *generics.Resolver) types.Holder {
	cd, ok := q.nodes.Capture(id)
	if !ok {
		return types.UnknownHolder()
	}
	if cd.Index < 0 {
		return q.patternSubject(id, res).WithoutConstant()
	}
	pat := q.nodes.Parent(id)
	return q.ctorArg(q.patternSubject(pat, res).Type(), cd.Ctor, cd.Index)
}

// patternSubject is the value a pattern is matched against: the switch
// subject for top-level patterns, the enclosing constructor argument for
// nested ones.
func (q *query) patternSubject(pat ast.NodeID, res *generics.Resolver) types.Holder {
	parent := q.nodes.Parent(pat)
	switch q.nodes.KindOf(parent) {
	case ast.KindCase:
		sw := q.nodes.Parent(parent)
		d, ok := q.nodes.Switch(sw)
		if !ok {
			return types.UnknownHolder()
		}
		return q.quiet(d.Subject, res)
	case ast.KindCall:
		outer, _ := q.nodes.Call(parent)
		for i, a := range outer.Args {
			if a == pat {
				return q.ctorArg(q.patternSubject(parent, res).Type(), patternCtor(q.nodes, parent), i)
			}
		}
	}
	return types.UnknownHolder()
}

func (q *query) ctorArg(subject types.Type, ctor string, i int) types.Holder {
	t := q.m.Follow(subject)
	if t.IsEnumValue() {
		t = t.EnumType()
	}
	if !q.m.IsEnum(t) {
		return types.UnknownHolder()
	}
	member, ok := q.tab.OwnMember(t.Decl(), ctor)
	if !ok {
		return types.UnknownHolder()
	}
	fn := q.m.EnumCtor(member, t)
	if !fn.IsFunction() || i >= len(fn.Args()) {
		return types.UnknownHolder()
	}
	return types.Hold(fn.Args()[i].Type)
}

// block evaluates statements in a new frame; its value is the value of the
// last statement. `var a, b` lists are blocks of Var only and declare into
// the enclosing frame.
func (q *query) block(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Block(id)
	frame := false
	for _, s := range d.Stmts {
		if q.nodes.KindOf(s) != ast.KindVar {
			frame = true
			break
		}
	}
	if frame {
		q.scope.Push()
		defer q.scope.Pop()
	}
	want, _ := q.expected(id, res)
	out := types.Hold(types.Void())
	for i, s := range d.Stmts {
		if q.cancelled() {
			return types.UnknownHolder()
		}
		if i == len(d.Stmts)-1 {
			out = q.evalExpecting(s, res, want)
		} else {
			out = q.eval(s, res)
		}
		if fn, ok := q.nodes.Function(s); ok && fn.Name != "" {
			q.scope.Define(fn.Name, out)
		}
	}
	return out
}

func (q *query) varStmt(id ast.NodeID, res *generics.Resolver) types.Holder {
	q.declaredVar(id, res)
	return types.Hold(types.Void())
}

// declaredVar types a local variable and defines it in the current frame.
// A type tag wins over the initializer, which is checked against it.
func (q *query) declaredVar(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, ok := q.nodes.Var(id)
	if !ok {
		return types.UnknownHolder()
	}
	var h types.Holder
	switch {
	case d.Type.IsValid():
		tag := q.fromTag(d.Type, id)
		h = types.Declared(tag).WithOrigin(id)
		if d.Init.IsValid() {
			init := q.evalExpecting(d.Init, res, tag)
			ok := q.checkAssign(h, init, d.Init, diag.SemaIncompatibleType, func(b *diag.ReportBuilder) {
				name := init.Type().WithoutConstant().String()
				b.WithReplacement("Change type tag to "+name, q.tab.B.Types.Get(d.Type).Span, name)
			})
			if ok && d.Final && init.HasConstant() {
				h = h.WithConstant(init.Constant())
			}
		}
	case d.Init.IsValid():
		h = q.eval(d.Init, res)
		if !d.Final {
			h = h.WithoutConstant()
		}
	default:
		h = types.UnknownHolder().WithOrigin(id)
	}
	h = h.WithImmutable(d.Final)
	q.scope.Define(d.Name, h)
	if q.onVar != nil {
		q.onVar(id, h)
	}
	return h
}

// returnStmt records the value for the enclosing function and checks it
// against the declared return type.
func (q *query) returnStmt(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Wrap(id)
	want := q.declaredReturn(id)
	value := types.HoldAt(types.Void(), id)
	if d.Inner.IsValid() {
		value = q.evalExpecting(d.Inner, res, want)
	}
	if n := len(q.returns); n > 0 {
		q.returns[n-1] = append(q.returns[n-1], value.WithoutConstant())
	}
	if !want.IsUnknown() {
		at := id
		if d.Inner.IsValid() {
			at = d.Inner
		}
		q.checkAssign(types.Declared(want), value, at, diag.SemaReturnMismatch, nil)
	}
	return types.UnknownHolder()
}

func (q *query) jump(ast.NodeID, *generics.Resolver) types.Holder {
	return types.UnknownHolder()
}

func (q *query) throw(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Wrap(id)
	q.eval(d.Inner, res)
	return types.UnknownHolder()
}

func (q *query) try(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Try(id)
	values := []types.Holder{q.eval(d.Body, res)}
	for _, c := range d.Catches {
		values = append(values, q.eval(c, res))
	}
	return q.cmp.UnifyAll(values, compat.RuleDefault)
}

func (q *query) catch(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Catch(id)
	q.scope.Push()
	defer q.scope.Pop()
	q.scope.Define(d.Name, q.catchType(id, d))
	return q.eval(d.Body, res)
}

// cast: `cast e` is unchecked and yields Unknown, `cast(e, T)` yields T.
func (q *query) cast(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Cast(id)
	q.eval(d.Expr, res)
	if !d.Type.IsValid() {
		return types.UnknownHolder()
	}
	return types.Declared(q.fromTag(d.Type, id))
}

// typeCheck is `(e : T)`.
func (q *query) typeCheck(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Cast(id)
	want := q.fromTag(d.Type, id)
	value := q.evalExpecting(d.Expr, res, want)
	if !q.cmp.CanAssign(types.Declared(want), value, q.compatContext(id)) {
		q.errorf(diag.SemaTypeCheckFailed, d.Expr, "Statement of type %s does not unify with asserted type %s", value.Type(), want)
		return types.Hold(want)
	}
	return types.Hold(want.WithConstant(value.Constant()))
}

func (q *query) paren(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Wrap(id)
	want, _ := q.expected(id, res)
	return q.evalExpecting(d.Inner, res, want)
}

// untyped disables checking below it.
func (q *query) untyped(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Wrap(id)
	q.quiet(d.Inner, res)
	return types.Hold(types.Dynamic())
}
