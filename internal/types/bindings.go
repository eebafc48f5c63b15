package types

// Binding maps a generic parameter name to a type.
type Binding struct {
	Name string
	Type Type
}

// Bindings is an ordered, read-only list of bindings; the first match wins.
type Bindings []Binding

func (b Bindings) Lookup(name string) (Type, bool) {
	for _, e := range b {
		if e.Name == name {
			return e.Type, true
		}
	}
	return Type{}, false
}

// Zip binds names to specifics by position; missing specifics are skipped.
func Zip(names []string, specifics []Type) Bindings {
	out := make(Bindings, 0, len(names))
	for i, n := range names {
		if i < len(specifics) {
			out = append(out, Binding{Name: n, Type: specifics[i]})
		}
	}
	return out
}

// Substitute replaces type parameters found in b, one level deep: a
// replacement is not substituted again, so cyclic bindings terminate.
func Substitute(t Type, b Bindings) Type {
	if len(b) == 0 {
		return t
	}
	switch t.kind {
	case KindTypeParam:
		if r, ok := b.Lookup(t.name); ok && !(r.kind == KindTypeParam && r.name == t.name) {
			if r.kind == KindUnknown {
				return t
			}
			return r
		}
		return t
	case KindClass:
		if len(t.specifics) > 0 {
			specs := make([]Type, len(t.specifics))
			for i, s := range t.specifics {
				specs[i] = Substitute(s, b)
			}
			t.specifics = specs
		}
		if t.bindings != nil || t.isAnonymous() {
			t.bindings = mergeBindings(t.bindings, b)
		}
		return t
	case KindFunction:
		args := make([]Arg, len(t.args))
		for i, a := range t.args {
			a.Type = Substitute(a.Type, b)
			args[i] = a
		}
		t.args = args
		r := Substitute(t.Ret(), b)
		t.ret = &r
		return t
	case KindEnumValue:
		e := Substitute(t.EnumType(), b)
		t.enum = &e
		t.bindings = mergeBindings(t.bindings, b)
		return t
	}
	return t
}

// mergeBindings substitutes inner with outer and appends outer names that
// inner does not bind.
func mergeBindings(inner, outer Bindings) Bindings {
	out := make(Bindings, 0, len(inner)+len(outer))
	for _, e := range inner {
		out = append(out, Binding{Name: e.Name, Type: Substitute(e.Type, outer)})
	}
	for _, e := range outer {
		if _, ok := inner.Lookup(e.Name); !ok {
			out = append(out, e)
		}
	}
	return out
}

// HasTypeParams reports whether t mentions an unresolved type parameter.
func HasTypeParams(t Type) bool {
	switch t.kind {
	case KindTypeParam:
		return true
	case KindClass:
		for _, s := range t.specifics {
			if HasTypeParams(s) {
				return true
			}
		}
	case KindFunction:
		for _, a := range t.args {
			if HasTypeParams(a.Type) {
				return true
			}
		}
		return HasTypeParams(t.Ret())
	case KindEnumValue:
		return HasTypeParams(t.EnumType())
	}
	return false
}
