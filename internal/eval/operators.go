package eval

import (
	"math"
	"strconv"

	"hxinfer/internal/ast"
	"hxinfer/internal/compat"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/types"
)

func (q *query) binary(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Binary(id)
	left := q.eval(d.Left, res)
	right := q.evalExpecting(d.Right, res, q.rightExpectation(d.Op, left))
	return q.operate(d.Op, q.operand(left, res), q.operand(right, res))
}

// rightExpectation lets `a ?? []` and similar see the left type.
func (q *query) rightExpectation(op ast.BinaryOp, left types.Holder) types.Type {
	if op == ast.BinCoalesce {
		return left.Type().UnwrapNull()
	}
	return types.Unknown()
}

// operand substitutes type parameters bound in res so that operators see
// concrete types.
func (q *query) operand(h types.Holder, res *generics.Resolver) types.Holder {
	if !h.Type().IsTypeParam() {
		return h
	}
	return h.WithType(res.Apply(h.Type()).WithConstant(h.Constant()))
}

// operate is the result of `l op r`, with constants folded where both sides
// are known. Int arithmetic wraps at 32 bits.
func (q *query) operate(op ast.BinaryOp, l, r types.Holder) types.Holder {
	lt, rt := q.m.Follow(l.Type()).UnwrapNull(), q.m.Follow(r.Type()).UnwrapNull()
	lc, rc := l.Constant(), r.Constant()

	switch {
	case op == ast.BinAnd || op == ast.BinOr:
		t := q.m.Bool()
		if lc.Kind == types.ConstBool && rc.Kind == types.ConstBool {
			v := lc.Bool && rc.Bool
			if op == ast.BinOr {
				v = lc.Bool || rc.Bool
			}
			t = t.WithConstant(types.BoolConst(v))
		}
		return types.Hold(t)
	case op.IsComparison():
		t := q.m.Bool()
		if c, ok := compareConst(op, lc, rc); ok {
			t = t.WithConstant(types.BoolConst(c))
		}
		return types.Hold(t)
	case op == ast.BinCoalesce:
		return q.cmp.Unify(l.WithType(l.Type().UnwrapNull()).WithoutConstant(), r.WithoutConstant(), compat.RuleDefault)
	case op == ast.BinRange:
		t := q.m.IntIterator()
		if lc.Kind == types.ConstInt && rc.Kind == types.ConstInt {
			t = t.WithConstant(types.RangeConst(lc.Int, rc.Int))
		}
		return types.Hold(t)
	}

	if lt.IsDynamic() || rt.IsDynamic() {
		return types.Hold(types.Dynamic())
	}
	if op == ast.BinAdd && (lt.IsString() || rt.IsString()) {
		t := q.m.StringType()
		if ls, ok := constText(lc); ok {
			if rs, ok := constText(rc); ok {
				t = t.WithConstant(types.StringConst(ls + rs))
			}
		}
		return types.Hold(t)
	}
	if lt.IsUnknown() || rt.IsUnknown() {
		return types.UnknownHolder()
	}
	if op.IsBitwise() {
		t := q.m.Int()
		if lc.Kind == types.ConstInt && rc.Kind == types.ConstInt {
			t = t.WithConstant(types.IntConst(foldBits(op, lc.Int, rc.Int)))
		}
		return types.Hold(t)
	}
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return types.UnknownHolder()
	}
	if op == ast.BinDiv || lt.IsFloat() || rt.IsFloat() {
		t := q.m.Float()
		a, aok := lc.AsFloat()
		b, bok := rc.AsFloat()
		if aok && bok {
			if v, ok := foldFloat(op, a, b); ok {
				t = t.WithConstant(types.FloatConst(v))
			}
		}
		return types.Hold(t)
	}
	t := q.m.Int()
	if lc.Kind == types.ConstInt && rc.Kind == types.ConstInt {
		if v, ok := foldInt(op, lc.Int, rc.Int); ok {
			t = t.WithConstant(types.IntConst(v))
		}
	}
	return types.Hold(t)
}

func wrap32(v int64) int64 { return int64(int32(v)) } //nolint:gosec // Int is 32-bit

func foldInt(op ast.BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case ast.BinAdd:
		return wrap32(a + b), true
	case ast.BinSub:
		return wrap32(a - b), true
	case ast.BinMul:
		return wrap32(a * b), true
	case ast.BinMod:
		if b == 0 {
			return 0, false
		}
		return wrap32(a % b), true
	}
	return 0, false
}

func foldFloat(op ast.BinaryOp, a, b float64) (float64, bool) {
	switch op {
	case ast.BinAdd:
		return a + b, true
	case ast.BinSub:
		return a - b, true
	case ast.BinMul:
		return a * b, true
	case ast.BinDiv:
		return a / b, true
	case ast.BinMod:
		return math.Mod(a, b), true
	}
	return 0, false
}

func foldBits(op ast.BinaryOp, a, b int64) int64 {
	x, y := int32(a), uint32(b)&31 //nolint:gosec // Int is 32-bit
	switch op {
	case ast.BinBitAnd:
		return int64(x & int32(b))
	case ast.BinBitOr:
		return int64(x | int32(b))
	case ast.BinBitXor:
		return int64(x ^ int32(b))
	case ast.BinShl:
		return int64(x << y)
	case ast.BinShr:
		return int64(x >> y)
	case ast.BinUShr:
		return int64(int32(uint32(x) >> y))
	}
	return 0
}

func compareConst(op ast.BinaryOp, l, r types.Constant) (bool, bool) {
	if a, ok := l.AsFloat(); ok {
		b, ok := r.AsFloat()
		if !ok {
			return false, false
		}
		switch op {
		case ast.BinEq:
			return a == b, true
		case ast.BinNe:
			return a != b, true
		case ast.BinLt:
			return a < b, true
		case ast.BinLe:
			return a <= b, true
		case ast.BinGt:
			return a > b, true
		case ast.BinGe:
			return a >= b, true
		}
		return false, false
	}
	if !l.IsSet() || !r.IsSet() || l.Kind == types.ConstArray || r.Kind == types.ConstArray {
		return false, false
	}
	switch op {
	case ast.BinEq:
		return l.Equal(r), true
	case ast.BinNe:
		return !l.Equal(r), true
	}
	return false, false
}

// constText renders a constant operand of string concatenation.
func constText(c types.Constant) (string, bool) {
	switch c.Kind {
	case types.ConstString:
		return c.Str, true
	case types.ConstInt:
		return strconv.FormatInt(c.Int, 10), true
	case types.ConstBool:
		return strconv.FormatBool(c.Bool), true
	case types.ConstNull:
		return "null", true
	}
	return "", false
}

func (q *query) unary(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Unary(id)
	h := q.operand(q.eval(d.Operand, res), res)
	t := q.m.Follow(h.Type()).UnwrapNull()
	c := h.Constant()
	switch d.Op {
	case ast.UnNot:
		out := q.m.Bool()
		if c.Kind == types.ConstBool {
			out = out.WithConstant(types.BoolConst(!c.Bool))
		}
		return types.Hold(out)
	case ast.UnBitNot:
		if t.IsUnknownOrDynamic() {
			return types.Hold(t)
		}
		out := q.m.Int()
		if c.Kind == types.ConstInt {
			out = out.WithConstant(types.IntConst(wrap32(^c.Int)))
		}
		return types.Hold(out)
	case ast.UnNeg:
		switch c.Kind {
		case types.ConstInt:
			return h.WithConstant(types.IntConst(wrap32(-c.Int)))
		case types.ConstFloat:
			return h.WithConstant(types.FloatConst(-c.Float))
		}
		return h.WithoutConstant()
	}
	// ++ and -- keep the operand type.
	if h.IsImmutable() && !q.initializesField(id, d.Operand) {
		q.errorf(diag.SemaImmutableAssign, d.Operand, "Cannot assign to final %s", q.assignedName(d.Operand))
	}
	return h.WithoutConstant().WithImmutable(false)
}

// assign checks the value against the target; compound assignments check
// the operator result. The value of an assignment is the assigned value.
func (q *query) assign(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Assign(id)
	target := q.eval(d.Target, res)
	if target.IsImmutable() && !q.initializesField(id, d.Target) {
		q.errorf(diag.SemaImmutableAssign, d.Target, "Cannot assign to final %s", q.assignedName(d.Target))
	}
	if d.Compound {
		value := q.eval(d.Value, res)
		result := q.operate(d.Op, q.operand(target, res), q.operand(value, res))
		if !result.IsUnknown() {
			q.checkAssign(target, result, id, diag.SemaIncompatibleType, nil)
		}
		return result.WithoutConstant()
	}
	value := q.evalExpecting(d.Value, res, target.Type())
	q.checkAssign(target, value, d.Value, diag.SemaIncompatibleType, nil)
	return value
}

// initializesField reports an assignment to a field of the enclosing class
// made directly in its constructor, where final fields get their value.
func (q *query) initializesField(assign, target ast.NodeID) bool {
	node := q.nodes.Get(assign)
	if node == nil {
		return false
	}
	owner := q.tab.Member(node.Owner)
	if owner == nil || !owner.IsConstructor() || q.nodes.EnclosingFunction(assign).IsValid() {
		return false
	}
	var name string
	if id, ok := q.nodes.Ident(target); ok {
		if _, local := q.scope.Lookup(id.Name); local {
			return false
		}
		name = id.Name
	} else if m, ok := q.nodes.Member(target); ok && q.nodes.KindOf(m.Target) == ast.KindThis {
		name = m.Name
	}
	if name == "" {
		return false
	}
	_, ok := q.tab.OwnMember(owner.Decl, name)
	return ok
}

func (q *query) assignedName(target ast.NodeID) string {
	if id, ok := q.nodes.Ident(target); ok {
		return id.Name
	}
	if m, ok := q.nodes.Member(target); ok {
		return m.Name
	}
	return "value"
}
