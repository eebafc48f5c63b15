package compat

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

type visitMode uint8

const (
	visitCast visitMode = iota
	visitStruct
)

type visitKey struct {
	to, from ast.DeclID
	mode     visitMode
}

// query is the state of one top-level CanAssign call.
type query struct {
	e       *Engine
	m       *types.Model
	actx    *Context
	scope   ast.DeclID
	visited map[visitKey]struct{}
}

func (q *query) assign(to, from types.Type) bool {
	if absorbs(q.m, to, from) {
		return true
	}
	if q.m.IsEnumValueClass(to) && (from.IsEnumValue() || q.m.IsEnum(from)) {
		return true
	}

	to, from = q.m.Follow(to), q.m.Follow(from)
	if absorbs(q.m, to, from) {
		return true
	}
	if q.m.IsEnumValueClass(to) && (from.IsEnumValue() || q.m.IsEnum(from)) {
		return true
	}
	if to.IsVoid() || from.IsVoid() {
		return to.IsVoid() && from.IsVoid()
	}

	if tf, ok := q.functionLike(to, true); ok {
		if ff, ok := q.functionLike(from, false); ok {
			return q.functions(tf, ff)
		}
	}
	if q.m.IsFunctionClass(to) && from.IsFunction() {
		return true
	}

	if q.underlyingInScope(to, from) {
		return true
	}

	if from.IsEnumValue() {
		from = from.EnumType()
	}
	if to.IsEnumValue() {
		to = to.EnumType()
	}

	if to.SameClass(from) {
		return q.specifics(to, from)
	}
	if isNominal(to) && isNominal(from) {
		if q.casts(to, from) || q.hierarchy(to, from) {
			return true
		}
	}
	if q.structuralTarget(to, from) {
		return q.structural(to, from)
	}

	if to.IsTypeParam() || from.IsTypeParam() {
		return true
	}
	return false
}

// absorbs covers the rules that accept regardless of the other side.
func absorbs(m *types.Model, to, from types.Type) bool {
	switch {
	case to.IsUnknown() || from.IsUnknown():
		return true
	case to.IsDynamic() || from.IsDynamic():
		return true
	case m.IsAny(to):
		return true
	}
	return false
}

func isNominal(t types.Type) bool {
	return t.IsClass() || t.IsPrimitive()
}

// specifics compares two instances of one class position by position.
func (q *query) specifics(to, from types.Type) bool {
	ts, fs := to.Specifics(), from.Specifics()
	if len(fs) == 0 {
		return true
	}
	for i, t := range ts {
		if t.IsTypeParam() {
			continue
		}
		if !q.nested(t, from.Specific(i)) {
			return false
		}
	}
	return true
}

// nested runs a check whose structural mismatches must not be recorded.
func (q *query) nested(to, from types.Type) bool {
	saved := q.actx
	q.actx = nil
	ok := q.assign(to, from)
	q.actx = saved
	return ok
}

// underlyingInScope: an enum abstract accepts its underlying values inside
// its own declaration.
func (q *query) underlyingInScope(to, from types.Type) bool {
	if !q.scope.IsValid() || to.Decl() != q.scope || !q.m.IsEnumAbstract(to) {
		return false
	}
	under, ok := q.m.Underlying(to)
	if !ok {
		return false
	}
	return q.nested(under, from)
}

// enter marks a declaration pair as in progress; false means the pair is
// already being compared further up the stack.
func (q *query) enter(to, from types.Type, mode visitMode) (visitKey, bool) {
	k := visitKey{to: to.Decl(), from: from.Decl(), mode: mode}
	if _, ok := q.visited[k]; ok {
		return k, false
	}
	q.visited[k] = struct{}{}
	return k, true
}

func (q *query) leave(k visitKey) { delete(q.visited, k) }
