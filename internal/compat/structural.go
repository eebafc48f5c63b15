package compat

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

// structuralTarget: anonymous structures accept anything with the right
// members; struct-init classes accept object literals.
func (q *query) structuralTarget(to, from types.Type) bool {
	if !to.IsClass() || !(from.IsClass() || from.IsPrimitive()) {
		return false
	}
	if q.m.IsAnonymous(to) {
		return true
	}
	return q.m.IsStructInit(to) && q.m.IsObjectLiteral(from)
}

// structural compares member by member. A pair already under comparison is
// assumed to match, so mutually recursive structures terminate.
func (q *query) structural(to, from types.Type) bool {
	k, ok := q.enter(to, from, visitStruct)
	if !ok {
		return true
	}
	defer q.leave(k)

	if q.m.IsStructInit(to) && q.m.IsObjectLiteral(from) {
		if ctor, ok := q.m.Tab.Constructor(to.Decl()); ok {
			return q.structInit(ctor, to, from)
		}
	}

	ok = true
	for _, id := range q.m.Tab.AllMembers(to.Decl()) {
		mm := q.m.Tab.Member(id)
		if mm.Static || mm.IsConstructor() || mm.Kind == ast.MemberEnumCtor {
			continue
		}
		src, found := q.m.Tab.FindImplementation(from.Decl(), mm.Name)
		if !found {
			if q.mayBeAbsent(to, mm) {
				continue
			}
			if !q.missing(mm.Name) {
				return false
			}
			ok = false
			continue
		}
		tt := q.e.members.MemberType(id, to).Type()
		st := q.e.members.MemberType(src, from).Type()
		if !q.nested(tt, st) {
			if !q.wrongType(mm.Name, st, tt, q.memberNode(src)) {
				return false
			}
			ok = false
		}
	}
	return ok
}

// structInit matches an object literal against constructor parameters by
// name; optional parameters may be omitted.
func (q *query) structInit(ctor ast.MemberID, to, from types.Type) bool {
	ok := true
	for _, a := range q.ctorArgs(ctor, to) {
		src, found := q.m.Tab.OwnMember(from.Decl(), a.Name)
		if !found {
			if a.Optional {
				continue
			}
			if !q.missing(a.Name) {
				return false
			}
			ok = false
			continue
		}
		st := q.e.members.MemberType(src, from).Type()
		if !q.nested(a.Type, st) {
			if !q.wrongType(a.Name, st, a.Type, q.memberNode(src)) {
				return false
			}
			ok = false
		}
	}
	return ok
}

// mayBeAbsent: optional members and members with a default value; object
// literal fields always carry a value, so they never qualify.
func (q *query) mayBeAbsent(owner types.Type, mm *ast.Member) bool {
	if mm.Optional {
		return true
	}
	if q.m.IsObjectLiteral(owner) {
		return false
	}
	return mm.Init.IsValid() || (mm.Kind == ast.MemberMethod && mm.Body.IsValid())
}

func (q *query) memberNode(id ast.MemberID) ast.NodeID {
	if mm := q.m.Tab.Member(id); mm != nil {
		return mm.Init
	}
	return ast.NoNodeID
}

// missing records a missing member; false tells the caller to stop early
// because nobody collects records.
func (q *query) missing(name string) bool {
	if q.actx == nil {
		return false
	}
	q.actx.Missing = append(q.actx.Missing, MissingMember{Name: name})
	return true
}

func (q *query) wrongType(name string, from, to types.Type, node ast.NodeID) bool {
	if q.actx == nil {
		return false
	}
	q.actx.WrongType = append(q.actx.WrongType, WrongTypeMember{
		Name:     name,
		FromText: from.String(),
		ToText:   to.String(),
		FromNode: node,
	})
	return true
}
