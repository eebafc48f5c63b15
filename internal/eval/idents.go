package eval

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/compat"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/symbols"
	"hxinfer/internal/trace"
	"hxinfer/internal/types"
)

// ident resolves a name in this order: scope frames, local declarations,
// members of the enclosing declaration, enum constructors, type names,
// globals. Anything else is Unknown, never an error.
func (q *query) ident(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Ident(id)
	name := d.Name
	if h, ok := q.scope.Lookup(name); ok {
		return h
	}
	if local, ok := q.tab.LookupLocal(id, name); ok {
		return q.localType(local, res)
	}
	if decl := q.ownerDecl(id); decl.IsValid() {
		if member, ok := q.tab.FindMember(decl, name); ok {
			return q.memberOn(member, q.m.DeclaredInstance(decl), res)
		}
	}
	if ctor, ok := q.tab.LookupEnumCtor(name); ok {
		return q.enumCtor(ctor, res)
	}
	if decl, ok := q.tab.LookupType(name); ok {
		return types.Hold(q.typeValue(decl))
	}
	if member, ok := q.tab.Global(name); ok {
		return types.Hold(q.m.MemberTag(member))
	}
	return types.UnknownHolder()
}

// typeValue is the type of a type name used as a value: Enum<E> or Class<C>.
func (q *query) typeValue(decl ast.DeclID) types.Type {
	inst := q.m.Instance(decl)
	if q.tab.Decl(decl).Kind == ast.DeclEnum {
		return q.m.EnumOf(inst)
	}
	return q.m.ClassOf(inst)
}

// enumCtor types a constructor reference: an enum value without arguments,
// a constructor function otherwise. Class bindings in res apply.
func (q *query) enumCtor(ctor ast.MemberID, res *generics.Resolver) types.Holder {
	mm := q.tab.Member(ctor)
	t := q.m.EnumCtor(ctor, q.m.DeclaredInstance(mm.Decl))
	return types.Hold(res.Apply(t))
}

func (q *query) localType(local symbols.Local, res *generics.Resolver) types.Holder {
	switch local.Kind {
	case symbols.LocalVar:
		scope := q.scope
		q.scope = NewScope()
		rep, onVar := q.rep, q.onVar
		q.rep, q.onVar = nil, nil
		h := q.declaredVar(local.Node, res)
		q.rep, q.onVar = rep, onVar
		q.scope = scope
		return h
	case symbols.LocalParam:
		return q.paramType(local.Node, res)
	case symbols.LocalForKey, symbols.LocalForValue:
		key, value := q.forBindings(local.Node, res)
		if local.Kind == symbols.LocalForKey {
			return key
		}
		return value
	case symbols.LocalCapture:
		return q.captureType(local.Node, res)
	case symbols.LocalCatch:
		d, _ := q.nodes.Catch(local.Node)
		return q.catchType(local.Node, d)
	case symbols.LocalFunction:
		return q.detached(local.Node, res)
	}
	return types.UnknownHolder()
}

func (q *query) catchType(id ast.NodeID, d *ast.CatchData) types.Holder {
	if d.Type.IsValid() {
		return types.Declared(q.fromTag(d.Type, id))
	}
	return types.Hold(types.Dynamic())
}

// this is the declaration's own instance with its parameters as specifics.
func (q *query) this(id ast.NodeID, _ *generics.Resolver) types.Holder {
	decl := q.ownerDecl(id)
	if !decl.IsValid() {
		return types.UnknownHolder()
	}
	return types.Hold(q.m.DeclaredInstance(decl))
}

func (q *query) super(id ast.NodeID, _ *generics.Resolver) types.Holder {
	sup, ok := q.superType(id)
	if !ok {
		return types.UnknownHolder()
	}
	return types.Hold(sup)
}

// superType is the instantiated superclass of the enclosing class.
func (q *query) superType(id ast.NodeID) (types.Type, bool) {
	decl := q.ownerDecl(id)
	d := q.tab.Decl(decl)
	if d == nil {
		return types.Unknown(), false
	}
	if len(d.Extends) == 0 || d.Kind != ast.DeclClass {
		q.errorf(diag.SemaSuperWithoutParent, id, "Class %s has no super class", d.Name)
		return types.Unknown(), false
	}
	for _, sup := range q.m.SuperTypes(q.m.DeclaredInstance(decl)) {
		if k := q.tab.Decl(sup.Decl()); k != nil && k.Kind == ast.DeclClass {
			return sup, true
		}
	}
	trace.Error(q.tracer, "eval.super", "unresolved super class of "+d.Name)
	return types.Unknown(), false
}

// MemberType implements compat.MemberTyper so that structural checks run
// inside the query and share its recursion guards.
func (q *query) MemberType(member ast.MemberID, owner types.Type) types.Holder {
	raw := q.memberRaw(member)
	h := raw.WithType(compat.MemberOn(q.m, raw.Type(), member, owner))
	if mm := q.tab.Member(member); mm != nil && mm.Kind == ast.MemberField && (mm.Final || q.tab.IsEnumAbstractValue(member)) {
		h = h.AsImmutable()
	}
	return h
}

var _ compat.MemberTyper = (*query)(nil)

// memberOn types member as seen on owner, then applies res.
func (q *query) memberOn(member ast.MemberID, owner types.Type, res *generics.Resolver) types.Holder {
	h := q.MemberType(member, owner)
	return res.ApplyHolder(h)
}

// memberRaw types member inside its own declaration: untagged fields from
// their initializer, untagged methods from their body. A member already
// being inferred higher on the stack falls back to its tags.
func (q *query) memberRaw(member ast.MemberID) types.Holder {
	mm := q.tab.Member(member)
	if mm == nil {
		return types.UnknownHolder()
	}
	if !q.needsInference(member, mm) {
		return q.tagged(member, mm)
	}
	if h, ok := q.e.opts.Cache.get(mm.Decl, member); ok {
		return h
	}
	if _, busy := q.members[member]; busy {
		q.guardHits++
		return types.Hold(q.m.MemberTag(member))
	}
	q.members[member] = struct{}{}
	hits := q.guardHits

	scope, rep, onVar, returns := q.scope, q.rep, q.onVar, q.returns
	q.scope, q.rep, q.onVar, q.returns = NewScope(), nil, nil, nil
	var h types.Holder
	switch mm.Kind {
	case ast.MemberField:
		h = q.fieldType(mm)
	case ast.MemberMethod:
		h = q.methodType(member, mm)
	}
	q.scope, q.rep, q.onVar, q.returns = scope, rep, onVar, returns

	delete(q.members, member)
	if q.guardHits == hits && !q.cancelled() {
		q.e.opts.Cache.put(mm.Decl, member, h)
	}
	return h
}

func (q *query) needsInference(member ast.MemberID, mm *ast.Member) bool {
	switch mm.Kind {
	case ast.MemberField:
		return !mm.Type.IsValid() && mm.Init.IsValid() && !q.tab.IsEnumAbstractValue(member)
	case ast.MemberMethod:
		if mm.Type.IsValid() || mm.IsConstructor() {
			return false
		}
		if !mm.Ret.IsValid() && mm.Body.IsValid() {
			return true
		}
		for _, p := range mm.Params {
			if d, ok := q.nodes.Param(p); ok && !d.Type.IsValid() {
				return true
			}
		}
	}
	return false
}

func (q *query) tagged(member ast.MemberID, mm *ast.Member) types.Holder {
	t := q.m.MemberTag(member)
	if q.tab.IsEnumAbstractValue(member) && mm.Init.IsValid() {
		init := q.detached(mm.Init, nil)
		if init.HasConstant() {
			t = t.WithConstant(init.Constant())
		}
	}
	if mm.Kind == ast.MemberField && mm.Type.IsValid() {
		return types.Declared(t)
	}
	return types.Hold(t)
}

func (q *query) fieldType(mm *ast.Member) types.Holder {
	h := q.eval(mm.Init, nil)
	if !mm.Final {
		h = h.WithoutConstant()
	}
	return h.WithOrigin(mm.Init).WithImmutable(false)
}

// methodType infers untagged parameters and the return type of a method.
func (q *query) methodType(member ast.MemberID, mm *ast.Member) types.Holder {
	args := q.m.ParamArgs(mm.Params, q.m.MemberParams(member))
	for i, p := range mm.Params {
		if i < len(args) && args[i].Type.IsUnknown() {
			args[i].Type = q.paramType(p, nil).Type()
		}
	}
	ret := types.Unknown()
	switch {
	case mm.Ret.IsValid():
		ret = q.m.FromTag(mm.Ret, q.m.MemberParams(member))
	case mm.Body.IsValid():
		ret = q.bodyReturn(mm.Body, nil, q.nodes.KindOf(mm.Body) == ast.KindBlock).Type().WithoutConstant()
	}
	return types.Hold(types.Function(args, ret, member))
}

// bodyReturn walks body collecting `return` values. Without returns the
// result is Void for statement bodies and the body value otherwise.
func (q *query) bodyReturn(body ast.NodeID, res *generics.Resolver, voidWithoutReturns bool) types.Holder {
	q.returns = append(q.returns, nil)
	value := q.eval(body, res)
	rets := q.returns[len(q.returns)-1]
	q.returns = q.returns[:len(q.returns)-1]
	if len(rets) > 0 {
		return q.cmp.UnifyAll(rets, compat.RuleDefault)
	}
	if voidWithoutReturns {
		return types.Hold(types.Void())
	}
	return value
}
