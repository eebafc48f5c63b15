package generics

import (
	"slices"
	"strings"

	"hxinfer/internal/types"
)

// Entry is one binding or constraint.
type Entry struct {
	Name string
	Type types.Holder
	Prov Provenance
}

// Resolver maps type-parameter names to types. Add and AddConstraint modify
// the receiver; everything else returns a fresh resolver. Callers that hand
// a resolver down and then add to it must Clone first.
type Resolver struct {
	entries     []Entry
	constraints []Entry
}

func New() *Resolver { return &Resolver{} }

// Clone returns an independent copy; Holder values are immutable, so copying
// the slices is enough.
func (r *Resolver) Clone() *Resolver {
	if r == nil {
		return New()
	}
	return &Resolver{
		entries:     slices.Clone(r.entries),
		constraints: slices.Clone(r.constraints),
	}
}

func (r *Resolver) IsEmpty() bool {
	return r == nil || (len(r.entries) == 0 && len(r.constraints) == 0)
}

// Entries returns bindings in insertion order. READONLY
func (r *Resolver) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Constraints returns constraint entries in insertion order. READONLY
func (r *Resolver) Constraints() []Entry {
	if r == nil {
		return nil
	}
	return r.constraints
}

// Add binds name with the given provenance, replacing an existing entry of
// the same name and provenance. Enum values are widened to their enum.
// When name is constrained by another parameter (`U:T`), that parameter is
// bound to the same type with the constraint's provenance.
func (r *Resolver) Add(name string, h types.Holder, prov Provenance) {
	if r == nil || name == "" {
		return
	}
	r.add(name, widen(h), prov, nil)
}

func (r *Resolver) add(name string, h types.Holder, prov Provenance, seen []string) {
	r.entries = put(r.entries, Entry{Name: name, Type: h, Prov: prov})
	if h.Type().IsTypeParam() {
		return
	}
	c, ok := r.constraintOf(name)
	if !ok || !c.Type.Type().IsTypeParam() {
		return
	}
	bound := c.Type.Type().Name()
	seen = append(seen, name)
	if slices.Contains(seen, bound) || r.holds(bound, h.Type(), c.Prov) {
		return
	}
	r.add(bound, h, c.Prov, seen)
}

func (r *Resolver) constraintOf(name string) (Entry, bool) {
	for _, c := range r.constraints {
		if c.Name == name {
			return c, true
		}
	}
	return Entry{}, false
}

func (r *Resolver) holds(name string, t types.Type, prov Provenance) bool {
	for _, e := range r.entries {
		if e.Name == name && e.Prov == prov && e.Type.Type().Equal(t) {
			return true
		}
	}
	return false
}

// AddType is Add for a bare type.
func (r *Resolver) AddType(name string, t types.Type, prov Provenance) {
	r.Add(name, types.Hold(t), prov)
}

// AddConstraint records an upper bound for name.
func (r *Resolver) AddConstraint(name string, h types.Holder, prov Provenance) {
	if r == nil || name == "" {
		return
	}
	r.constraints = put(r.constraints, Entry{Name: name, Type: widen(h), Prov: prov})
}

// AddBindings adds every binding with one provenance.
func (r *Resolver) AddBindings(b types.Bindings, prov Provenance) {
	for _, e := range b {
		r.AddType(e.Name, e.Type, prov)
	}
}

func put(list []Entry, e Entry) []Entry {
	for i := range list {
		if list[i].Name == e.Name && list[i].Prov == e.Prov {
			list[i] = e
			return list
		}
	}
	return append(list, e)
}

func widen(h types.Holder) types.Holder {
	if t := h.Type(); t.IsEnumValue() {
		return h.WithType(t.EnumType())
	}
	return h
}

// Resolve returns the best binding for name: bindings by provenance, then
// constraints. A binding to another parameter is followed with the current
// name excluded, so T -> U -> T terminates.
func (r *Resolver) Resolve(name string) (types.Holder, bool) {
	return r.resolve(name, nil)
}

func (r *Resolver) resolve(name string, excluded []string) (types.Holder, bool) {
	if r == nil || slices.Contains(excluded, name) {
		return types.UnknownHolder(), false
	}
	h, ok := r.lookup(name)
	if !ok {
		return types.UnknownHolder(), false
	}
	t := h.Type()
	if t.IsTypeParam() {
		if t.Name() == name {
			return types.UnknownHolder(), false
		}
		if inner, ok := r.resolve(t.Name(), append(excluded, name)); ok {
			return inner, true
		}
	}
	return h, true
}

func (r *Resolver) lookup(name string) (types.Holder, bool) {
	if e, ok := best(r.entries, name); ok {
		return e.Type, true
	}
	if e, ok := best(r.constraints, name); ok {
		return e.Type, true
	}
	return types.UnknownHolder(), false
}

// best picks the known entry with the lowest provenance; ties go to the
// earlier insertion. Unknown entries only count when nothing else exists.
func best(list []Entry, name string) (Entry, bool) {
	var (
		found    Entry
		ok       bool
		fallback Entry
		hasFall  bool
	)
	for _, e := range list {
		if e.Name != name {
			continue
		}
		if e.Type.IsUnknown() {
			if !hasFall {
				fallback, hasFall = e, true
			}
			continue
		}
		if !ok || e.Prov < found.Prov {
			found, ok = e, true
		}
	}
	if ok {
		return found, true
	}
	return fallback, hasFall
}

// ResolveType returns the bound type of name or Unknown.
func (r *Resolver) ResolveType(name string) types.Type {
	h, _ := r.Resolve(name)
	return h.Type()
}

// Names lists every bound or constrained name once, in first-seen order.
func (r *Resolver) Names() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.entries)+len(r.constraints))
	var out []string
	for _, list := range [][]Entry{r.entries, r.constraints} {
		for _, e := range list {
			if _, ok := seen[e.Name]; ok {
				continue
			}
			seen[e.Name] = struct{}{}
			out = append(out, e.Name)
		}
	}
	return out
}

// Snapshot freezes the bound names into plain bindings. Names known only
// through constraints are left out: a constraint bounds a parameter, it does
// not replace it.
func (r *Resolver) Snapshot() types.Bindings {
	if r == nil {
		return nil
	}
	out := make(types.Bindings, 0, len(r.entries))
	for _, e := range r.entries {
		if _, dup := out.Lookup(e.Name); dup {
			continue
		}
		if h, ok := r.Resolve(e.Name); ok {
			out = append(out, types.Binding{Name: e.Name, Type: h.Type()})
		}
	}
	return out
}

// Apply substitutes every resolvable parameter inside t.
func (r *Resolver) Apply(t types.Type) types.Type {
	if r.IsEmpty() || !types.HasTypeParams(t) {
		return t
	}
	return types.Substitute(t, r.Snapshot())
}

// ApplyHolder is Apply keeping the holder's constant and origin.
func (r *Resolver) ApplyHolder(h types.Holder) types.Holder {
	return h.WithType(r.Apply(h.Type()))
}

// ResolveReturnType substitutes the return type of a function value.
func (r *Resolver) ResolveReturnType(fn types.Type) types.Holder {
	if !fn.IsFunction() {
		return types.UnknownHolder()
	}
	return types.Hold(r.Apply(fn.Ret()))
}

// WithoutProvenance drops every binding and constraint of provenance p.
func (r *Resolver) WithoutProvenance(p Provenance) *Resolver {
	out := New()
	if r == nil {
		return out
	}
	for _, e := range r.entries {
		if e.Prov != p {
			out.entries = append(out.entries, e)
		}
	}
	for _, e := range r.constraints {
		if e.Prov != p {
			out.constraints = append(out.constraints, e)
		}
	}
	return out
}

// WithoutName returns a copy with every entry for name removed.
func (r *Resolver) WithoutName(name string) *Resolver {
	out := New()
	if r == nil {
		return out
	}
	for _, e := range r.entries {
		if e.Name != name {
			out.entries = append(out.entries, e)
		}
	}
	for _, e := range r.constraints {
		if e.Name != name {
			out.constraints = append(out.constraints, e)
		}
	}
	return out
}

// Merge returns r with parent's entries added where r has no entry of the
// same name and provenance. Entries already in r always win.
func (r *Resolver) Merge(parent *Resolver) *Resolver {
	out := r.Clone()
	if parent == nil {
		return out
	}
	for _, e := range parent.entries {
		if !has(out.entries, e.Name, e.Prov) {
			out.entries = append(out.entries, e)
		}
	}
	for _, e := range parent.constraints {
		if !has(out.constraints, e.Name, e.Prov) {
			out.constraints = append(out.constraints, e)
		}
	}
	return out
}

// Override returns r with every binding of over replacing r's entries of the
// same name, whatever their provenance. Member access uses it so that a
// segment's class bindings take precedence over the caller's.
func (r *Resolver) Override(over *Resolver) *Resolver {
	if over.IsEmpty() {
		return r.Clone()
	}
	out := New()
	if r != nil {
		for _, e := range r.entries {
			if !hasName(over.entries, e.Name) {
				out.entries = append(out.entries, e)
			}
		}
		out.constraints = slices.Clone(r.constraints)
	}
	out.entries = append(out.entries, over.entries...)
	for _, e := range over.constraints {
		out.constraints = put(out.constraints, e)
	}
	return out
}

func has(list []Entry, name string, prov Provenance) bool {
	return slices.ContainsFunc(list, func(e Entry) bool { return e.Name == name && e.Prov == prov })
}

func hasName(list []Entry, name string) bool {
	return slices.ContainsFunc(list, func(e Entry) bool { return e.Name == name })
}

func (r *Resolver) String() string {
	if r.IsEmpty() {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Name)
		b.WriteString("=")
		b.WriteString(e.Type.String())
		b.WriteString("/")
		b.WriteString(e.Prov.String())
	}
	for _, e := range r.constraints {
		b.WriteString(", ")
		b.WriteString(e.Name)
		b.WriteString(":")
		b.WriteString(e.Type.String())
	}
	b.WriteByte('}')
	return b.String()
}
