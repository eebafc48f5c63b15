package symbols

import (
	"testing"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/parser"
	"hxinfer/internal/source"
)

func buildTable(t *testing.T, src string) *Table {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	b := ast.NewBuilder(ast.Hints{})
	id := fs.AddVirtual("test.hx", []byte(src))
	res := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	tab := Build(fs, b, []ast.FileID{res.File}, Options{Reporter: diag.BagReporter{Bag: bag}})
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %s %s", d.Code, d.Message)
	}
	return tab
}

func TestPreludeParses(t *testing.T) {
	tab := buildTable(t, "")
	for _, name := range []string{"Int", "Float", "String", "Array", "Map", "Null", "Iterator", "KeyValueIterator", "EReg", "Std", "Math"} {
		id, ok := tab.LookupType(name)
		if !ok {
			t.Errorf("prelude type %s missing", name)
			continue
		}
		if !tab.Info(id).Has(FlagPrelude) {
			t.Errorf("%s must carry the prelude flag", name)
		}
	}
	intID, _ := tab.LookupType("Int")
	if !tab.Info(intID).Has(FlagCoreType) {
		t.Errorf("Int must be a core type")
	}
	if _, ok := tab.Global("trace"); !ok {
		t.Errorf("trace must resolve")
	}
}

func TestMembersAlongSuperChain(t *testing.T) {
	tab := buildTable(t, `
interface Named { function name():String; }
class Base implements Named {
	var id:Int;
	public function name():String return "base";
}
class Child extends Base {
	var extra:Bool;
	override public function name():String return "child";
}
`)
	child, _ := tab.LookupType("Child")
	base, _ := tab.LookupType("Base")
	named, _ := tab.LookupType("Named")

	id, ok := tab.FindMember(child, "id")
	if !ok || tab.Member(id).Decl != base {
		t.Fatalf("id must come from Base")
	}
	nm, _ := tab.FindMember(child, "name")
	if tab.Member(nm).Decl != child {
		t.Errorf("override must shadow the inherited method")
	}
	if got := len(tab.AllMembers(child)); got != 3 {
		t.Errorf("AllMembers = %d, want 3", got)
	}
	if !tab.IsSubtype(child, named) {
		t.Errorf("Child must reach Named through Base")
	}
	if tab.IsSubtype(base, child) {
		t.Errorf("Base is not a Child")
	}
}

func TestAnonymousDecls(t *testing.T) {
	tab := buildTable(t, `
typedef Point = { x:Int, ?y:Int };
class A { function f() { var o = {x: 1, y: 2}; } }
`)
	point, _ := tab.LookupType("Point")
	anon, ok := tab.AnonDecl(tab.Decl(point).Underlying)
	if !ok || !tab.Info(anon).Has(FlagAnonymous) {
		t.Fatalf("structure type must get a declaration")
	}
	y, ok := tab.OwnMember(anon, "y")
	if !ok || !tab.Member(y).Optional {
		t.Errorf("?y must be optional")
	}

	var obj ast.NodeID
	tab.B.Nodes.Walk(tab.Member(tab.Decl(mustType(t, tab, "A")).Members[0]).Body, func(id ast.NodeID) bool {
		if tab.B.Nodes.KindOf(id) == ast.KindObjectLit {
			obj = id
		}
		return true
	})
	decl, ok := tab.ObjectDecl(obj)
	if !ok || !tab.Info(decl).Has(FlagObjectLiteral) {
		t.Fatalf("object literal must get a declaration")
	}
	if len(tab.Decl(decl).Members) != 2 {
		t.Errorf("object literal members = %d", len(tab.Decl(decl).Members))
	}
}

func mustType(t *testing.T, tab *Table, name string) ast.DeclID {
	t.Helper()
	id, ok := tab.LookupType(name)
	if !ok {
		t.Fatalf("type %s not found", name)
	}
	return id
}

func TestLookupLocal(t *testing.T) {
	tab := buildTable(t, `
enum Opt<T> { Some(v:T); None; }
class A {
	function run(p:Int) {
		var before = 1;
		for (i in 0...3) {
			var inner = i;
			use(inner);
		}
		switch (Some(1)) {
			case Some(v): use(v);
			default:
		}
		var after = 2;
	}
}
`)
	if _, ok := tab.LookupEnumCtor("Some"); !ok {
		t.Fatalf("enum constructor lookup failed")
	}
	run := tab.Decl(mustType(t, tab, "A")).Members[0]
	body := tab.Member(run).Body

	uses := map[string]ast.NodeID{}
	tab.B.Nodes.Walk(body, func(id ast.NodeID) bool {
		if call, ok := tab.B.Nodes.Call(id); ok {
			if callee, ok := tab.B.Nodes.Ident(call.Callee); ok && callee.Name == "use" {
				arg, _ := tab.B.Nodes.Ident(call.Args[0])
				uses[arg.Name] = call.Args[0]
			}
		}
		return true
	})

	cases := []struct {
		from string
		name string
		kind LocalKind
		ok   bool
	}{
		{"inner", "inner", LocalVar, true},
		{"inner", "i", LocalForValue, true},
		{"inner", "before", LocalVar, true},
		{"inner", "p", LocalParam, true},
		{"inner", "after", 0, false},
		{"v", "v", LocalCapture, true},
		{"v", "i", 0, false},
	}
	for _, tc := range cases {
		l, ok := tab.LookupLocal(uses[tc.from], tc.name)
		if ok != tc.ok {
			t.Errorf("from %s lookup %s: ok=%v, want %v", tc.from, tc.name, ok, tc.ok)
			continue
		}
		if ok && l.Kind != tc.kind {
			t.Errorf("from %s lookup %s: kind=%s, want %s", tc.from, tc.name, l.Kind, tc.kind)
		}
	}

	names := map[string]bool{}
	for _, l := range tab.Visible(uses["inner"]) {
		names[l.Name] = true
	}
	for _, want := range []string{"inner", "i", "before", "p"} {
		if !names[want] {
			t.Errorf("%s must be visible", want)
		}
	}
}
