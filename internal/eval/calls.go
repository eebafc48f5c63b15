package eval

import (
	"fmt"
	"slices"
	"strconv"

	"hxinfer/internal/ast"
	"hxinfer/internal/compat"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/symbols"
	"hxinfer/internal/types"
)

func (q *query) call(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.Call(id)
	if q.nodes.KindOf(d.Callee) == ast.KindSuper {
		return q.superCall(id, d, res)
	}
	callee := q.eval(d.Callee, res)
	ct := callee.Type()
	if ct.IsUnknownOrDynamic() {
		for _, a := range d.Args {
			q.eval(a, res)
		}
		return callee.WithoutConstant()
	}
	sig, ok := q.cmp.Signature(ct)
	if !ok {
		q.errorf(diag.SemaNotCallable, d.Callee, "%s is not callable", ct)
		for _, a := range d.Args {
			q.eval(a, res)
		}
		return types.UnknownHolder()
	}

	local := q.methodResolver(sig)
	if want, ok := q.expected(id, res); ok {
		hints := map[string][]types.Holder{}
		q.collect(sig.Ret(), want, hints)
		for name, list := range hints {
			if h := q.cmp.UnifyAll(list, compat.RuleDefault); !h.IsUnknown() {
				local.Add(name, h, generics.FromAssignHint)
			}
		}
	}
	local = q.applyArgs(id, d.Args, sig, res, local)
	ret := local.Apply(sig.Ret())
	if q.m.IsEnumCtorFunction(sig) {
		mm := q.tab.Member(sig.Member())
		ret = erase(ret, q.m.TypeParamNames(mm.Decl))
		return types.Hold(types.EnumValue(ret, sig.Member(), mm.Name, local.Snapshot()))
	}
	return types.Hold(erase(ret, q.methodParamNames(sig)))
}

func (q *query) methodParamNames(sig types.Type) []string {
	mm := q.tab.Member(sig.Member())
	if mm == nil {
		return nil
	}
	names := make([]string, len(mm.TypeParams))
	for i, tp := range mm.TypeParams {
		names[i] = tp.Name
	}
	return names
}

// methodResolver seeds a call resolver with the constraints of the callee's
// own generic parameters.
func (q *query) methodResolver(sig types.Type) *generics.Resolver {
	local := generics.New()
	mm := q.tab.Member(sig.Member())
	if mm == nil || len(mm.TypeParams) == 0 {
		return local
	}
	local.AddTypeParams(q.m, mm.TypeParams, q.m.MemberParams(sig.Member()), generics.FromMethod)
	return local
}

// superCall handles `super(args)` inside a constructor.
func (q *query) superCall(id ast.NodeID, d *ast.CallData, res *generics.Resolver) types.Holder {
	sup, ok := q.superType(d.Callee)
	if !ok {
		for _, a := range d.Args {
			q.eval(a, res)
		}
		return types.UnknownHolder()
	}
	if ctor, ok := q.tab.Constructor(sup.Decl()); ok {
		sig := q.memberOn(ctor, sup, res).Type()
		q.applyArgs(id, d.Args, sig, res, generics.New())
	}
	return types.Hold(types.Void())
}

// applyArgs evaluates call arguments left to right. Each argument is
// evaluated expecting its parameter type with the bindings found so far, so
// function literals see concrete parameter types. Occurrences of every
// generic name are unified across all arguments and bound FromArgument.
// Count and per-argument assignability are reported against the final
// bindings.
func (q *query) applyArgs(call ast.NodeID, args []ast.NodeID, sig types.Type, res *generics.Resolver, local *generics.Resolver) *generics.Resolver {
	params := compatArgs(sig)
	occ := map[string][]types.Holder{}
	values := make([]types.Holder, len(args))
	bound := local.Merge(res)
	for i, a := range args {
		p := argAt(params, i)
		values[i] = q.evalExpecting(a, bound, bound.Apply(p.Type))
		q.collect(p.Type, values[i].Type(), occ)
		bound = bindOccurrences(q, local, occ).Merge(res)
	}
	local = bindOccurrences(q, local, occ)
	final := local.Merge(res)

	required, rest := 0, false
	for _, p := range params {
		switch {
		case p.Rest:
			rest = true
		case !p.Optional:
			required++
		}
	}
	if len(args) < required || (!rest && len(args) > len(params)) {
		q.errorf(diag.SemaArgumentCount, call, "Invalid number of arguments: expected %s, got %d", arity(required, len(params), rest), len(args))
		return local
	}
	for i, a := range args {
		p := argAt(params, i)
		want := types.Hold(final.Apply(p.Type))
		if !q.cmp.CanAssign(want, values[i], q.compatContext(a)) {
			q.errorf(diag.SemaArgumentType, a, "Incompatible argument %s: %s should be %s", argName(p, i), values[i].Type(), want.Type())
		}
	}
	return local
}

// arity renders how many arguments a signature accepts.
func arity(required, total int, rest bool) string {
	switch {
	case rest:
		return fmt.Sprintf("at least %d", required)
	case required == total:
		return strconv.Itoa(required)
	default:
		return fmt.Sprintf("%d to %d", required, total)
	}
}

func compatArgs(sig types.Type) []types.Arg {
	args := sig.Args()
	if len(args) == 1 && args[0].Type.IsVoid() {
		return nil
	}
	return args
}

func argName(p types.Arg, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return "#" + strconv.Itoa(i+1)
}

// bindOccurrences unifies the collected occurrences of each name and binds
// the result; Unknown results are not bound.
func bindOccurrences(q *query, local *generics.Resolver, occ map[string][]types.Holder) *generics.Resolver {
	out := local.Clone()
	for name, list := range occ {
		h := q.cmp.UnifyAll(list, compat.RuleDefault)
		if h.IsUnknown() {
			continue
		}
		out.Add(name, h.WithoutConstant(), generics.FromArgument)
	}
	return out
}

// collect walks a parameter type against an argument type and records, for
// every type parameter in param, the part of arg standing at its place.
func (q *query) collect(param, arg types.Type, occ map[string][]types.Holder) {
	if arg.IsUnknown() {
		return
	}
	switch {
	case param.IsTypeParam():
		occ[param.Name()] = append(occ[param.Name()], types.Hold(arg))
	case param.IsNull():
		q.collect(param.UnwrapNull(), arg.UnwrapNull(), occ)
	case param.IsFunction():
		fn, ok := q.cmp.Signature(arg)
		if !ok {
			return
		}
		pa, fa := compatArgs(param), compatArgs(fn)
		for i := range pa {
			if i < len(fa) {
				q.collect(pa[i].Type, fa[i].Type, occ)
			}
		}
		q.collect(param.Ret(), fn.Ret(), occ)
	case param.IsClass() && len(param.Specifics()) > 0:
		a := q.m.FollowTypedef(arg.UnwrapNull())
		if a.IsEnumValue() {
			a = a.EnumType()
		}
		p := q.m.FollowTypedef(param)
		if !a.IsClass() || !p.IsClass() {
			return
		}
		if !a.SameClass(p) {
			sup, ok := q.m.AsSuper(a, p.Decl())
			if !ok {
				return
			}
			a = sup
		}
		for i, s := range p.Specifics() {
			q.collect(s, a.Specific(i), occ)
		}
	}
}

// erase turns the named type parameters left in t into Unknown so that
// unresolved call generics do not leak into results.
func erase(t types.Type, names []string) types.Type {
	if len(names) == 0 {
		return t
	}
	switch t.Kind() {
	case types.KindTypeParam:
		if slices.Contains(names, t.Name()) {
			return types.Unknown()
		}
		return t
	case types.KindClass:
		if len(t.Specifics()) == 0 {
			return t
		}
		specs := make([]types.Type, len(t.Specifics()))
		for i, s := range t.Specifics() {
			specs[i] = erase(s, names)
		}
		return t.WithSpecifics(specs...)
	case types.KindFunction:
		args := make([]types.Arg, len(t.Args()))
		for i, a := range t.Args() {
			a.Type = erase(a.Type, names)
			args[i] = a
		}
		return t.WithArgs(args).WithRet(erase(t.Ret(), names))
	}
	return t
}

// newExpr seeds the class parameters from explicit specifics, then the
// assignment hint (resolver entries and the expected type), then the
// constructor arguments; arguments win.
func (q *query) newExpr(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.New(id)
	te := q.tab.B.Types.Get(d.Type)
	decl, ok := q.tab.LookupType(te.Name)
	if !ok {
		q.errorf(diag.SemaUnknownType, id, "Type not found: %s", te.Name)
		for _, a := range d.Args {
			q.eval(a, res)
		}
		return types.UnknownHolder()
	}
	explicit := len(te.Args) > 0
	inst := q.fromTag(d.Type, id)
	if !explicit {
		inst = q.m.DeclaredInstance(decl)
	}

	local := generics.New()
	if !explicit {
		for _, e := range res.Entries() {
			if e.Prov == generics.FromAssignHint {
				local.Add(e.Name, e.Type, generics.FromAssignHint)
			}
		}
		if want, ok := q.expected(id, res); ok {
			if w, ok := q.m.AsSuper(q.m.FollowTypedef(want.UnwrapNull()), decl); ok {
				local.AddBindings(types.Zip(q.m.TypeParamNames(decl), w.Specifics()), generics.FromAssignHint)
			}
		}
	}

	ctor, ok := q.tab.Constructor(decl)
	if !ok {
		if !q.tab.Info(decl).Has(symbols.FlagExtern) {
			q.errorf(diag.SemaNoConstructor, id, "Class %s doesn't have a constructor", te.Name)
		}
		for _, a := range d.Args {
			q.eval(a, res)
		}
		return types.Hold(q.instantiate(decl, inst, explicit, local))
	}
	sig := q.memberOn(ctor, inst, nil).Type()
	if explicit {
		q.applyArgs(id, d.Args, sig, res, generics.New())
		return types.Hold(inst)
	}
	local = q.applyArgs(id, d.Args, sig, res, local)
	return types.Hold(q.instantiate(decl, inst, explicit, local))
}

func (q *query) instantiate(decl ast.DeclID, inst types.Type, explicit bool, local *generics.Resolver) types.Type {
	if explicit {
		return inst
	}
	return q.m.Instance(decl, local.SpecificsFor(q.m, decl)...)
}
