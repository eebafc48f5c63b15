package generics

import (
	"testing"

	"hxinfer/internal/types"
)

var (
	intT = types.Primitive(types.NameInt, 1)
	strT = types.Primitive(types.NameString, 2)
)

func TestResolvePrecedence(t *testing.T) {
	r := New()
	r.AddType("T", intT, FromArgument)
	r.AddType("T", strT, FromAssignHint)
	if got := r.ResolveType("T"); !got.IsInt() {
		t.Fatalf("argument binding must win, got %s", got)
	}

	r = New()
	r.AddType("T", strT, FromAssignHint)
	r.AddType("T", intT, FromArgument)
	if got := r.ResolveType("T"); !got.IsInt() {
		t.Fatalf("insertion order must not matter, got %s", got)
	}
}

func TestAddReplacesSameProvenance(t *testing.T) {
	r := New()
	r.AddType("T", intT, FromClass)
	r.AddType("T", strT, FromClass)
	if len(r.Entries()) != 1 {
		t.Fatalf("expected one entry, got %d", len(r.Entries()))
	}
	if got := r.ResolveType("T"); !got.IsString() {
		t.Fatalf("replacement lost, got %s", got)
	}
}

func TestConstraintsAreFallback(t *testing.T) {
	r := New()
	r.AddConstraint("T", types.Hold(strT), FromClass)
	if got := r.ResolveType("T"); !got.IsString() {
		t.Fatalf("constraint must be used without bindings, got %s", got)
	}
	r.AddType("T", intT, FromMethod)
	if got := r.ResolveType("T"); !got.IsInt() {
		t.Fatalf("binding must win over constraint, got %s", got)
	}
}

func TestResolveCycle(t *testing.T) {
	r := New()
	r.AddType("T", types.TypeParam("U"), FromClass)
	r.AddType("U", types.TypeParam("T"), FromClass)
	h, ok := r.Resolve("T")
	if !ok {
		t.Fatalf("T must resolve to something")
	}
	if !h.Type().IsTypeParam() {
		t.Fatalf("expected a parameter, got %s", h)
	}

	r.AddType("U", intT, FromArgument)
	if got := r.ResolveType("T"); !got.IsInt() {
		t.Fatalf("chain T -> U -> Int expected, got %s", got)
	}
	if _, ok := New().Resolve("X"); ok {
		t.Fatalf("unknown name must not resolve")
	}
	var nilR *Resolver
	if _, ok := nilR.Resolve("T"); ok {
		t.Fatalf("nil resolver must be empty")
	}
}

func TestEnumValuesAreWidened(t *testing.T) {
	enum := types.Instance(7, "Color")
	red := types.EnumValue(enum, 3, "Red", nil)
	r := New()
	r.AddType("T", red, FromArgument)
	got := r.ResolveType("T")
	if got.IsEnumValue() || !got.Equal(enum) {
		t.Fatalf("enum value must be stored as its enum, got %s (%s)", got, got.Kind())
	}
}

func TestMergeKeepsChildEntries(t *testing.T) {
	child := New()
	child.AddType("T", intT, FromClass)
	parent := New()
	parent.AddType("T", strT, FromClass)
	parent.AddType("U", strT, FromMethod)

	merged := child.Merge(parent)
	if got := merged.ResolveType("T"); !got.IsInt() {
		t.Fatalf("child entry overwritten, got %s", got)
	}
	if got := merged.ResolveType("U"); !got.IsString() {
		t.Fatalf("parent entry lost, got %s", got)
	}
	if len(child.Entries()) != 1 {
		t.Fatalf("merge must not modify the receiver")
	}
}

func TestWithoutProvenanceAndOverride(t *testing.T) {
	r := New()
	r.AddType("T", intT, FromAssignHint)
	r.AddType("U", strT, FromClass)
	noHint := r.WithoutProvenance(FromAssignHint)
	if _, ok := noHint.Resolve("T"); ok {
		t.Fatalf("assign hint must be gone")
	}
	if _, ok := r.Resolve("T"); !ok {
		t.Fatalf("receiver must keep its entries")
	}

	over := New()
	over.AddType("U", intT, FromOther)
	got := r.Override(over)
	if !got.ResolveType("U").IsInt() {
		t.Fatalf("override must replace U regardless of provenance")
	}
}

func TestApplyAndSnapshot(t *testing.T) {
	r := New()
	r.AddType("K", strT, FromClass)
	r.AddType("V", types.TypeParam("K"), FromClass)
	m := types.Instance(9, "Map", types.TypeParam("K"), types.TypeParam("V"))
	if got := r.Apply(m).String(); got != "Map<String, String>" {
		t.Fatalf("Apply = %s", got)
	}
	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot = %v", snap)
	}
	fn := types.Function([]types.Arg{{Type: types.TypeParam("K")}}, types.TypeParam("V"), 0)
	if ret := r.ResolveReturnType(fn); !ret.Type().IsString() {
		t.Fatalf("return type = %s", ret)
	}
}

func TestAddBindsParameterConstraints(t *testing.T) {
	r := New()
	r.AddConstraint("U", types.Hold(types.TypeParam("T")), FromMethod)
	r.AddType("U", intT, FromArgument)
	if got := r.ResolveType("T"); !got.IsInt() {
		t.Fatalf("T must follow its constrained parameter, got %s", got)
	}
	if e := r.Entries()[len(r.Entries())-1]; e.Name != "T" || e.Prov != FromMethod {
		t.Fatalf("unexpected propagated entry %+v", e)
	}

	r = New()
	r.AddConstraint("U", types.Hold(types.TypeParam("T")), FromMethod)
	r.AddType("U", types.TypeParam("V"), FromArgument)
	if _, ok := r.Resolve("T"); ok {
		t.Fatalf("a parameter binding must not propagate")
	}

	r = New()
	r.AddConstraint("T", types.Hold(types.TypeParam("U")), FromClass)
	r.AddConstraint("U", types.Hold(types.TypeParam("T")), FromClass)
	r.AddType("T", strT, FromArgument)
	if got := r.ResolveType("U"); !got.IsString() {
		t.Fatalf("cyclic constraints: U = %s", got)
	}
	if n := len(r.Entries()); n > 3 {
		t.Fatalf("cyclic constraints added %d entries", n)
	}
}
