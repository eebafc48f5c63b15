package compat

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

// casts tries the implicit conversions declared on both sides: `to` types
// and @:to methods of the source, `from` types and @:from methods of the
// target.
func (q *query) casts(to, from types.Type) bool {
	k, ok := q.enter(to, from, visitCast)
	if !ok {
		return false
	}
	defer q.leave(k)

	for _, t := range q.toCasts(from) {
		if q.nested(to, t) {
			return true
		}
	}
	for _, t := range q.fromCasts(to) {
		if q.nested(t, from) {
			return true
		}
	}
	return false
}

// toCasts lists what an abstract instance converts to.
func (q *query) toCasts(t types.Type) []types.Type {
	d := q.abstractDecl(t)
	if d == nil {
		return nil
	}
	out := q.castTags(t, d.To)
	for _, id := range d.Members {
		mm := q.m.Tab.Member(id)
		if mm.Kind != ast.MemberMethod || !ast.HasMeta(mm.Meta, "to") || !mm.Ret.IsValid() {
			continue
		}
		ret := q.m.FromTag(mm.Ret, q.m.MemberParams(id))
		out = append(out, types.Substitute(ret, q.m.BindingsOf(t)))
	}
	return out
}

// fromCasts lists what an abstract instance accepts.
func (q *query) fromCasts(t types.Type) []types.Type {
	d := q.abstractDecl(t)
	if d == nil {
		return nil
	}
	out := q.castTags(t, d.From)
	for _, id := range d.Members {
		mm := q.m.Tab.Member(id)
		if mm.Kind != ast.MemberMethod || !ast.HasMeta(mm.Meta, "from") || len(mm.Params) == 0 {
			continue
		}
		args := q.m.ParamArgs(mm.Params[:1], q.m.MemberParams(id))
		if len(args) == 1 {
			out = append(out, types.Substitute(args[0].Type, q.m.BindingsOf(t)))
		}
	}
	return out
}

func (q *query) abstractDecl(t types.Type) *ast.Decl {
	if !t.IsClass() && !t.IsPrimitive() {
		return nil
	}
	d := q.m.Tab.Decl(t.Decl())
	if d == nil || d.Kind != ast.DeclAbstract {
		return nil
	}
	return d
}

func (q *query) castTags(t types.Type, tags []ast.TypeID) []types.Type {
	if len(tags) == 0 {
		return nil
	}
	params := types.Params{Names: q.m.TypeParamNames(t.Decl())}
	b := q.m.BindingsOf(t)
	out := make([]types.Type, 0, len(tags))
	for _, tag := range tags {
		out = append(out, types.Substitute(q.m.FromTag(tag, params), b))
	}
	return out
}

// hierarchy accepts a source whose superclass or interface chain reaches
// the target class; specifics are compared on the instantiated ancestor.
func (q *query) hierarchy(to, from types.Type) bool {
	if !from.IsClass() || !to.IsClass() {
		return false
	}
	sup, ok := q.m.AsSuper(from, to.Decl())
	if !ok || !sup.SameClass(to) {
		return false
	}
	return q.specifics(to, sup)
}
