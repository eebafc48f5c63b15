package generics

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

// ForInstance binds the declaration parameters of a class instance, e.g.
// T=Int for Box<Int>. Anonymous instances contribute their captured
// bindings as well.
func ForInstance(m *types.Model, t types.Type, prov Provenance) *Resolver {
	r := New()
	r.AddBindings(m.BindingsOf(t), prov)
	return r
}

// FromSnapshot rebuilds a resolver from frozen bindings.
func FromSnapshot(b types.Bindings, prov Provenance) *Resolver {
	r := New()
	r.AddBindings(b, prov)
	return r
}

// AddTypeParams records the constraints of declared generic parameters; a
// parameter with several constraints keeps the first one.
func (r *Resolver) AddTypeParams(m *types.Model, params []ast.TypeParam, scope types.Params, prov Provenance) {
	for _, tp := range params {
		if len(tp.Constraints) == 0 {
			continue
		}
		c := m.FromTag(tp.Constraints[0], scope)
		if c.IsUnknown() {
			continue
		}
		r.AddConstraint(tp.Name, types.Hold(c), prov)
	}
}

// SpecificsFor lists the resolved specifics of decl in declaration order;
// unresolved parameters are Unknown.
func (r *Resolver) SpecificsFor(m *types.Model, decl ast.DeclID) []types.Type {
	names := m.TypeParamNames(decl)
	out := make([]types.Type, len(names))
	for i, n := range names {
		if h, ok := r.Resolve(n); ok && !h.Type().IsTypeParam() {
			out[i] = h.Type()
		}
	}
	return out
}
