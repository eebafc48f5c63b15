package types

import (
	"testing"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/parser"
	"hxinfer/internal/source"
	"hxinfer/internal/symbols"
)

const modelSource = `
typedef Pair<T> = { a:T, ?b:String };
enum Box<T> { Full(v:T); Empty; }
class Base<T> { var item:T; }
class Child extends Base<Int> {
	var m:Map<String, Array<Int>>;
	var n:Null<Int>;
	var f:(a:Int, ?b:String) -> Void;
	var p:Pair<Float>;
}
`

func newModel(t *testing.T, src string) *Model {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	b := ast.NewBuilder(ast.Hints{})
	id := fs.AddVirtual("model.hx", []byte(src))
	res := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	tab := symbols.Build(fs, b, []ast.FileID{res.File}, symbols.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	return NewModel(tab)
}

func memberOf(t *testing.T, m *Model, decl, name string) ast.MemberID {
	t.Helper()
	d, ok := m.Tab.LookupType(decl)
	if !ok {
		t.Fatalf("type %s not found", decl)
	}
	id, ok := m.Tab.FindMember(d, name)
	if !ok {
		t.Fatalf("member %s.%s not found", decl, name)
	}
	return id
}

func TestFromTag(t *testing.T) {
	m := newModel(t, modelSource)
	cases := map[string]string{
		"m": "Map<String, Array<Int>>",
		"n": "Null<Int>",
		"f": "(Int, ?String) -> Void",
		"p": "Pair<Float>",
	}
	for field, want := range cases {
		got := m.MemberTag(memberOf(t, m, "Child", field))
		if got.String() != want {
			t.Errorf("%s: got %s, want %s", field, got, want)
		}
	}
	if n := m.MemberTag(memberOf(t, m, "Child", "n")); !n.IsNull() || !n.UnwrapNull().IsInt() {
		t.Errorf("Null<Int> must wrap a primitive")
	}
}

func TestFollowTypedef(t *testing.T) {
	m := newModel(t, modelSource)
	p := m.MemberTag(memberOf(t, m, "Child", "p"))
	anon := m.Follow(p)
	if !m.IsAnonymous(anon) {
		t.Fatalf("Pair<Float> must follow to a structure, got %s", anon)
	}
	a, ok := m.Tab.OwnMember(anon.Decl(), "a")
	if !ok {
		t.Fatalf("structure member a missing")
	}
	raw := m.MemberTag(a)
	if !raw.IsTypeParam() {
		t.Fatalf("a must be tagged with T, got %s", raw)
	}
	if got := Substitute(raw, m.BindingsOf(anon)); !got.IsFloat() {
		t.Errorf("a must resolve to Float, got %s", got)
	}
}

func TestEnumCtorTypes(t *testing.T) {
	m := newModel(t, modelSource)
	full := m.MemberTag(memberOf(t, m, "Box", "Full"))
	if !full.IsFunction() || !m.IsEnumCtorFunction(full) {
		t.Fatalf("Full must be a constructor function, got %s", full)
	}
	if got := full.String(); got != "(T) -> Box<T>" {
		t.Errorf("Full = %s", got)
	}
	empty := m.MemberTag(memberOf(t, m, "Box", "Empty"))
	if !empty.IsEnumValue() || empty.String() != "Box<T>" {
		t.Errorf("Empty = %s (%s)", empty, empty.Kind())
	}
	if !m.IsEnum(empty.EnumType()) {
		t.Errorf("enum type of Empty must be an enum")
	}
}

func TestAsSuper(t *testing.T) {
	m := newModel(t, modelSource)
	child, _ := m.Tab.LookupType("Child")
	base, _ := m.Tab.LookupType("Base")
	got, ok := m.AsSuper(m.Instance(child), base)
	if !ok || got.String() != "Base<Int>" {
		t.Fatalf("AsSuper = %s, %v", got, ok)
	}
	item := m.MemberTag(memberOf(t, m, "Child", "item"))
	if resolved := Substitute(item, m.BindingsOf(got)); !resolved.IsInt() {
		t.Errorf("inherited item must be Int, got %s", resolved)
	}
}
