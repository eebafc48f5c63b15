package compat

import (
	"hxinfer/internal/types"
)

// Rule selects how Void takes part in unification.
type Rule uint8

const (
	// RuleDefault: Void against a value gives Void.
	RuleDefault Rule = iota
	// RulePreferVoid: any Void side wins, e.g. `if` without `else`.
	RulePreferVoid
	// RuleIgnoreVoid: Void sides are skipped, e.g. array elements and
	// loop bodies.
	RuleIgnoreVoid
)

func (r Rule) String() string {
	switch r {
	case RuleDefault:
		return "default"
	case RulePreferVoid:
		return "prefer-void"
	case RuleIgnoreVoid:
		return "ignore-void"
	}
	return "rule?"
}

// Unify merges two branch types into the narrowest type accepting both:
// equal types stay (constants survive only when equal), Int with Float
// gives Float, Null on one side wraps the result, a common super type is
// looked up through the hierarchy, and Dynamic is the last resort.
func (e *Engine) Unify(a, b types.Holder, rule Rule) types.Holder {
	at, bt := a.Type(), b.Type()

	if at.IsVoid() || bt.IsVoid() {
		switch {
		case at.IsVoid() && bt.IsVoid():
			return a
		case rule == RuleIgnoreVoid && at.IsVoid():
			return b
		case rule == RuleIgnoreVoid:
			return a
		}
		return types.Hold(types.Void())
	}
	if at.IsNull() || bt.IsNull() {
		inner := e.Unify(a.WithType(at.UnwrapNull()), b.WithType(bt.UnwrapNull()), rule)
		if inner.IsUnknown() {
			return types.Hold(e.model.WrapInNull(types.Unknown()))
		}
		return inner.WithType(e.model.WrapInNull(inner.Type())).WithoutConstant()
	}
	switch {
	case at.IsUnknown():
		return b
	case bt.IsUnknown():
		return a
	case at.IsDynamic():
		return a
	case bt.IsDynamic():
		return b
	}

	if at.IsEnumValue() && bt.IsEnumValue() && !at.Equal(bt) {
		at, bt = at.EnumType(), bt.EnumType()
		a, b = a.WithType(at), b.WithType(bt)
	}
	if at.Equal(bt) {
		if a.Constant().Equal(b.Constant()) {
			return a
		}
		return a.WithoutConstant()
	}
	if at.IsNumeric() && bt.IsNumeric() {
		return types.Hold(e.model.Float())
	}
	if e.CanAssignType(at, bt) {
		return a.WithoutConstant()
	}
	if e.CanAssignType(bt, at) {
		return b.WithoutConstant()
	}
	if common, ok := e.commonSuper(at, bt); ok {
		return types.Hold(common)
	}
	return types.Hold(types.Dynamic())
}

// UnifyAll folds Unify over list; an empty list is Unknown.
func (e *Engine) UnifyAll(list []types.Holder, rule Rule) types.Holder {
	out := types.UnknownHolder()
	first := true
	for _, h := range list {
		if rule == RuleIgnoreVoid && h.Type().IsVoid() {
			continue
		}
		if first {
			out, first = h, false
			continue
		}
		out = e.Unify(out, h, rule)
	}
	return out
}

// commonSuper walks the ancestors of a, nearest first, for one that
// accepts b.
func (e *Engine) commonSuper(a, b types.Type) (types.Type, bool) {
	if !a.IsClass() || !b.IsClass() {
		return types.Unknown(), false
	}
	queue := e.model.SuperTypes(a)
	for i := 0; i < len(queue) && i < maxAncestors; i++ {
		s := queue[i]
		if e.CanAssignType(s, b) {
			return s, true
		}
		queue = append(queue, e.model.SuperTypes(s)...)
	}
	return types.Unknown(), false
}

// maxAncestors bounds commonSuper on cyclic hierarchies.
const maxAncestors = 64
