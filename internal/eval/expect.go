package eval

import (
	"slices"

	"hxinfer/internal/ast"
	"hxinfer/internal/generics"
	"hxinfer/internal/types"
)

// expected returns the type the consumer of id wants: an explicit
// expectation pushed by the parent during the walk, or one derived from the
// parent node when id is evaluated on its own.
func (q *query) expected(id ast.NodeID, res *generics.Resolver) (types.Type, bool) {
	if t, ok := q.expect[id]; ok {
		return t, !t.IsUnknown()
	}
	t := q.expectedFromParent(id, res)
	return t, !t.IsUnknown()
}

func (q *query) expectedFromParent(id ast.NodeID, res *generics.Resolver) types.Type {
	nodes := q.nodes
	parent := nodes.Parent(id)
	if !parent.IsValid() {
		node := nodes.Get(id)
		if node == nil {
			return types.Unknown()
		}
		if mm := q.tab.Member(node.Owner); mm != nil && mm.Init == id && mm.Type.IsValid() {
			return q.m.MemberTag(node.Owner)
		}
		return types.Unknown()
	}

	switch nodes.KindOf(parent) {
	case ast.KindVar:
		d, _ := nodes.Var(parent)
		if d.Init == id {
			return q.fromTag(d.Type, parent)
		}
	case ast.KindParen:
		t, _ := q.expected(parent, res)
		return t
	case ast.KindReturn:
		return q.declaredReturn(parent)
	case ast.KindAssign:
		d, _ := nodes.Assign(parent)
		if d.Value == id && !d.Compound {
			return q.quiet(d.Target, res).Type()
		}
	case ast.KindCall:
		d, _ := nodes.Call(parent)
		i := slices.Index(d.Args, id)
		if i < 0 {
			return types.Unknown()
		}
		sig, ok := q.cmp.Signature(q.quiet(d.Callee, res).Type())
		if !ok {
			return types.Unknown()
		}
		return argAt(sig.Args(), i).Type
	case ast.KindNew:
		d, _ := nodes.New(parent)
		i := slices.Index(d.Args, id)
		if i < 0 {
			return types.Unknown()
		}
		inst := q.fromTag(d.Type, parent)
		ctor, ok := q.tab.Constructor(inst.Decl())
		if !ok {
			return types.Unknown()
		}
		return argAt(q.memberOn(ctor, inst, res).Type().Args(), i).Type
	case ast.KindArrayLit:
		want, ok := q.expected(parent, res)
		if want = q.m.Follow(want); ok && q.m.IsArray(want) {
			return want.Specific(0)
		}
	case ast.KindMapLit:
		d, _ := nodes.MapLit(parent)
		want, ok := q.expected(parent, res)
		if want = q.m.Follow(want); !ok || !q.m.IsMap(want) {
			return types.Unknown()
		}
		if slices.Contains(d.Keys, id) {
			return want.Specific(0)
		}
		return want.Specific(1)
	case ast.KindObjectLit:
		d, _ := nodes.ObjectLit(parent)
		want, ok := q.expected(parent, res)
		if !ok {
			return types.Unknown()
		}
		want = q.m.Follow(want)
		for _, f := range d.Fields {
			if f.Value != id {
				continue
			}
			if member, ok := q.tab.FindMember(want.Decl(), f.Name); ok && want.IsClass() {
				return q.memberOn(member, want, res).Type()
			}
		}
	case ast.KindTernary:
		d, _ := nodes.Ternary(parent)
		if d.Cond != id {
			t, _ := q.expected(parent, res)
			return t
		}
	case ast.KindFunction:
		d, _ := nodes.Function(parent)
		if d.Body == id && d.Ret.IsValid() {
			return q.fromTag(d.Ret, parent)
		}
	}
	return types.Unknown()
}

// argAt returns the i-th argument; a trailing rest argument covers the tail.
func argAt(args []types.Arg, i int) types.Arg {
	switch {
	case i < len(args):
		return args[i]
	case len(args) > 0 && args[len(args)-1].Rest:
		return args[len(args)-1]
	}
	return types.Arg{}
}

// declaredReturn is the tagged return type of the function that owns ret:
// the nearest function literal, else the member.
func (q *query) declaredReturn(ret ast.NodeID) types.Type {
	if fn := q.nodes.EnclosingFunction(ret); fn.IsValid() {
		d, _ := q.nodes.Function(fn)
		return q.fromTag(d.Ret, fn)
	}
	node := q.nodes.Get(ret)
	if node == nil {
		return types.Unknown()
	}
	mm := q.tab.Member(node.Owner)
	if mm == nil || mm.Kind != ast.MemberMethod {
		return types.Unknown()
	}
	if mm.IsConstructor() {
		return types.Void()
	}
	return q.fromTag(mm.Ret, ret)
}
