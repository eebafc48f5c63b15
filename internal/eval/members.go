package eval

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/types"
)

func (q *query) member(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Member(id)
	target := q.eval(d.Target, res)
	h := q.access(target.Type(), d.Name, res)
	if d.Safe && !h.IsUnknown() && !h.Type().IsVoid() {
		return h.WithType(q.m.WrapInNull(h.Type())).WithoutConstant()
	}
	return h
}

// access types `t.name`. Class<C> exposes statics, Enum<E> constructors;
// instances go through typedefs and Null, and the member is seen through
// the instance's bindings overriding the caller's resolver.
func (q *query) access(t types.Type, name string, res *generics.Resolver) types.Holder {
	if t.IsTypeParam() {
		if bound, ok := res.Resolve(t.Name()); ok && !bound.Type().IsTypeParam() {
			t = bound.Type()
		}
	}
	switch {
	case t.IsUnknown():
		return types.UnknownHolder()
	case t.IsDynamic():
		return types.Hold(types.Dynamic())
	}
	if t.IsClass() {
		switch t.Wrapper() {
		case types.WrapClass:
			inner := t.Specific(0)
			if member, ok := q.tab.FindMember(inner.Decl(), name); ok {
				return q.memberOn(member, q.m.DeclaredInstance(inner.Decl()), res)
			}
			return q.subType(name)
		case types.WrapEnum:
			inner := t.Specific(0)
			if ctor, ok := q.tab.OwnMember(inner.Decl(), name); ok {
				return q.enumCtor(ctor, res)
			}
			return q.subType(name)
		}
	}

	f := q.m.Follow(t)
	if f.IsEnumValue() {
		f = f.EnumType()
	}
	if f.IsDynamic() {
		return types.Hold(types.Dynamic())
	}
	if !f.IsClass() && !f.IsPrimitive() {
		return types.UnknownHolder()
	}
	member, ok := q.tab.FindMember(f.Decl(), name)
	if !ok {
		return types.UnknownHolder()
	}
	over := generics.ForInstance(q.m, f, generics.FromClass)
	return q.memberOn(member, f, res.Override(over))
}

// subType resolves a segment after a type name that is not one of its
// members as a declaration of its own (`Module.SubType`).
func (q *query) subType(name string) types.Holder {
	if decl, ok := q.tab.LookupType(name); ok {
		return types.Hold(q.typeValue(decl))
	}
	return types.UnknownHolder()
}

// index types `a[i]`: arrays give their element, maps and abstracts go
// through an @:arrayAccess method. Constant indices into constant arrays are
// bounds-checked.
func (q *query) index(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Index(id)
	target := q.eval(d.Target, res)
	idx := q.eval(d.Index, res)
	t := q.m.Follow(res.Apply(target.Type()))
	switch {
	case t.IsUnknown():
		return types.UnknownHolder()
	case t.IsDynamic():
		return types.Hold(types.Dynamic())
	case q.m.IsArray(t):
		elem := types.Hold(t.Specific(0))
		c := target.Constant()
		if c.Kind != types.ConstArray {
			return elem
		}
		ic := idx.Constant()
		switch ic.Kind {
		case types.ConstInt:
			if ic.Int < 0 || ic.Int >= int64(len(c.Elems)) {
				q.warnf(diag.SemaIndexOutOfBounds, d.Index, "Index %d is out of bounds [0, %d)", ic.Int, len(c.Elems))
				return elem
			}
			return elem.WithConstant(c.Elems[ic.Int])
		case types.ConstRange:
			if ic.Min < 0 || ic.Max > int64(len(c.Elems)) {
				q.warnf(diag.SemaIndexOutOfBounds, d.Index, "Index range %d...%d is out of bounds [0, %d)", ic.Min, ic.Max, len(c.Elems))
			}
		}
		return elem
	}
	if getter, ok := q.arrayAccess(t); ok {
		fn := q.memberOn(getter, t, res).Type()
		if fn.IsFunction() {
			return types.Hold(fn.Ret())
		}
	}
	return types.UnknownHolder()
}

// arrayAccess finds the @:arrayAccess getter of t's declaration.
func (q *query) arrayAccess(t types.Type) (ast.MemberID, bool) {
	if !t.IsClass() {
		return ast.NoMemberID, false
	}
	for _, m := range q.tab.AllMembers(t.Decl()) {
		mm := q.tab.Member(m)
		if mm.Kind == ast.MemberMethod && ast.HasMeta(mm.Meta, "arrayAccess") && len(mm.Params) == 1 {
			return m, true
		}
	}
	return ast.NoMemberID, false
}
