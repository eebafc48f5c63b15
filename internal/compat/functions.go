package compat

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

// functionLike reduces t to a function signature: raw functions and enum
// constructor functions as is, abstracts through a function-typed cast.
// asTarget selects `from` casts for the target side and `to` casts for the
// source side.
func (q *query) functionLike(t types.Type, asTarget bool) (types.Type, bool) {
	if t.IsFunction() {
		return t, true
	}
	d := q.abstractDecl(t)
	if d == nil {
		return types.Unknown(), false
	}
	var casts []types.Type
	if asTarget {
		casts = q.castTags(t, d.From)
	} else {
		casts = q.castTags(t, d.To)
	}
	for _, c := range casts {
		if c = q.m.Follow(c); c.IsFunction() {
			return c, true
		}
	}
	return types.Unknown(), false
}

// functions: arguments are contravariant, the return type is covariant and
// a Void target return accepts anything.
func (q *query) functions(to, from types.Type) bool {
	ta, fa := normalizeArgs(to.Args()), normalizeArgs(from.Args())
	if len(ta) != len(fa) {
		return false
	}
	for i := range ta {
		if !q.nested(fa[i].Type, ta[i].Type) {
			return false
		}
	}
	tr := q.m.Follow(to.Ret())
	if tr.IsVoid() {
		return true
	}
	return q.nested(tr, from.Ret())
}

// normalizeArgs treats a single Void argument as no arguments.
func normalizeArgs(args []types.Arg) []types.Arg {
	if len(args) == 1 && args[0].Type.IsVoid() {
		return nil
	}
	return args
}

// Signature exposes the reduced signature of a function-like type; the
// evaluator calls abstracts with function casts through it.
func (e *Engine) Signature(t types.Type) (types.Type, bool) {
	q := e.newQuery(nil)
	return q.functionLike(e.model.Follow(t), false)
}

// ctorArgs types the constructor parameters of a struct-init class.
func (q *query) ctorArgs(ctor ast.MemberID, owner types.Type) []types.Arg {
	mm := q.m.Tab.Member(ctor)
	args := q.m.ParamArgs(mm.Params, q.m.MemberParams(ctor))
	b := q.m.BindingsOf(owner)
	for i := range args {
		args[i].Type = types.Substitute(args[i].Type, b)
	}
	return args
}
