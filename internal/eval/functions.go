package eval

import (
	"slices"

	"hxinfer/internal/ast"
	"hxinfer/internal/generics"
	"hxinfer/internal/symbols"
	"hxinfer/internal/types"
)

// function types a function literal. Parameters are defined in a new frame
// before the body is walked; a named literal sees itself with an Unknown
// return while its body is inferred.
func (q *query) function(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Function(id)
	q.scope.Push()
	defer q.scope.Pop()

	args := make([]types.Arg, 0, len(d.Params))
	for _, p := range d.Params {
		pd, ok := q.nodes.Param(p)
		if !ok {
			continue
		}
		elem := q.paramElem(p, res)
		args = append(args, types.Arg{
			Name:     pd.Name,
			Type:     elem.Type().WithoutConstant(),
			Optional: pd.Optional || pd.Default.IsValid(),
			Rest:     pd.Rest,
		})
		q.scope.Define(pd.Name, q.restLocal(pd, elem))
	}
	if d.Name != "" {
		q.scope.Define(d.Name, types.Hold(types.Function(args, types.Unknown(), ast.NoMemberID)))
	}

	ret := types.Unknown()
	switch {
	case d.Ret.IsValid():
		ret = q.fromTag(d.Ret, id)
		q.bodyReturn(d.Body, res, true)
	case d.Body.IsValid():
		ret = q.bodyReturn(d.Body, res, q.nodes.KindOf(d.Body) == ast.KindBlock).Type().WithoutConstant()
	}
	return types.Hold(types.Function(args, ret, ast.NoMemberID))
}

func (q *query) param(id ast.NodeID, res *generics.Resolver) types.Holder {
	return q.paramType(id, res)
}

// paramType is the type of a parameter seen as a local: rest parameters are
// arrays of their element type.
func (q *query) paramType(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, ok := q.nodes.Param(id)
	if !ok {
		return types.UnknownHolder()
	}
	return q.restLocal(d, q.paramElem(id, res))
}

func (q *query) restLocal(d *ast.ParamData, elem types.Holder) types.Holder {
	if !d.Rest {
		return elem
	}
	return elem.WithType(q.m.Array(elem.Type()))
}

// paramElem types a parameter as a function argument. Untagged parameters
// are taken from, in order: the function type the literal is expected to
// have, the default value, how the parameter is used in the body.
func (q *query) paramElem(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Param(id)
	if d.Type.IsValid() {
		return types.Declared(q.fromTag(d.Type, id)).WithOrigin(id)
	}
	if _, busy := q.evaluating[id]; busy {
		q.guardHits++
		return types.UnknownHolder()
	}
	q.evaluating[id] = struct{}{}
	defer delete(q.evaluating, id)

	if t := q.expectedParam(id, res); !t.IsUnknown() {
		return types.HoldAt(t, id)
	}
	if d.Default.IsValid() {
		if h := q.detached(d.Default, res); !h.IsUnknown() {
			return h.WithoutConstant().WithOrigin(id)
		}
	}
	if t := q.paramUsage(id, d.Name, res); !t.IsUnknown() {
		return types.HoldAt(t, id)
	}
	return types.UnknownHolder().WithOrigin(id)
}

// expectedParam reads the parameter type off the function type the
// enclosing literal is expected to have, e.g. a callback argument.
func (q *query) expectedParam(id ast.NodeID, res *generics.Resolver) types.Type {
	fn := q.nodes.Parent(id)
	d, ok := q.nodes.Function(fn)
	if !ok {
		return types.Unknown()
	}
	i := slices.Index(d.Params, id)
	want, ok := q.expected(fn, res)
	if !ok || i < 0 {
		return types.Unknown()
	}
	sig, ok := q.cmp.Signature(want)
	if !ok {
		return types.Unknown()
	}
	args := compatArgs(sig)
	if i >= len(args) {
		return types.Unknown()
	}
	t := args[i].Type
	if t.IsTypeParam() {
		if b, ok := res.Resolve(t.Name()); ok {
			t = b.Type()
		} else {
			return types.Unknown()
		}
	}
	return t
}

// paramUsage infers an untagged parameter from the first place in the body
// where its use has a known expected type: a call argument, a typed
// variable initializer or an assignment value.
func (q *query) paramUsage(id ast.NodeID, name string, res *generics.Resolver) types.Type {
	body := q.paramBody(id)
	if !body.IsValid() {
		return types.Unknown()
	}
	found := types.Unknown()
	q.nodes.Walk(body, func(n ast.NodeID) bool {
		if !found.IsUnknown() || q.cancelled() {
			return false
		}
		ident, ok := q.nodes.Ident(n)
		if !ok || ident.Name != name {
			return true
		}
		local, ok := q.tab.LookupLocal(n, name)
		if !ok || local.Kind != symbols.LocalParam || local.Node != id {
			return true
		}
		if t := q.usageType(n, res); !t.IsUnknown() && !t.IsTypeParam() {
			found = t.WithoutConstant()
		}
		return true
	})
	return found
}

// paramBody is the body the parameter is visible in.
func (q *query) paramBody(id ast.NodeID) ast.NodeID {
	if fn, ok := q.nodes.Function(q.nodes.Parent(id)); ok {
		return fn.Body
	}
	node := q.nodes.Get(id)
	if node == nil {
		return ast.NoNodeID
	}
	if mm := q.tab.Member(node.Owner); mm != nil {
		return mm.Body
	}
	return ast.NoNodeID
}

func (q *query) usageType(use ast.NodeID, res *generics.Resolver) types.Type {
	parent := q.nodes.Parent(use)
	switch q.nodes.KindOf(parent) {
	case ast.KindCall:
		d, _ := q.nodes.Call(parent)
		if d.Callee == use {
			return types.Unknown()
		}
	case ast.KindVar, ast.KindNew, ast.KindReturn:
	case ast.KindAssign:
		d, _ := q.nodes.Assign(parent)
		if d.Compound {
			return types.Unknown()
		}
	default:
		return types.Unknown()
	}
	return q.quietExpected(use, res)
}

// quietExpected runs expectedFromParent without reporting.
func (q *query) quietExpected(id ast.NodeID, res *generics.Resolver) types.Type {
	rep, onVar := q.rep, q.onVar
	q.rep, q.onVar = nil, nil
	t := q.expectedFromParent(id, res)
	q.rep, q.onVar = rep, onVar
	return t
}
