package eval

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/testkit"
	"hxinfer/internal/types"
)

func evalMarked(t *testing.T, src string, n int) types.Holder {
	t.Helper()
	env := testkit.Load(t, src)
	ev := New(env.Model, Options{})
	return ev.Evaluate(context.Background(), env.Marked(t, n), nil, nil, nil)
}

func checkProgram(t *testing.T, src string, opts Options) []diag.Diagnostic {
	t.Helper()
	env := testkit.Load(t, src)
	bag := diag.NewBag(0)
	ev := New(env.Model, opts)
	if err := ev.CheckFile(context.Background(), env.File, diag.BagReporter{Bag: bag}); err != nil {
		t.Fatalf("check: %v", err)
	}
	return bag.Items()
}

func codesOf(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func requireCode(t *testing.T, diags []diag.Diagnostic, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got %v", code, codesOf(diags))
	return diag.Diagnostic{}
}

func requireClean(t *testing.T, diags []diag.Diagnostic) {
	t.Helper()
	for _, d := range diags {
		t.Errorf("unexpected diagnostic %s: %s", d.Code, d.Message)
	}
}

func TestDispatchCoversEveryKind(t *testing.T) {
	for k := ast.KindIdent; k < ast.KindCount; k++ {
		if handlers[k] == nil {
			t.Errorf("no handler for %s", k)
		}
	}
}

func TestInferExpressions(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"array index", testkit.Snippet("var a:Array<Int> = [1, 2, 3];\n/*@*/a[0];"), "Int"},
		{"empty array takes the tag", testkit.Snippet("var a:Array<String> = /*@*/[];"), "Array<String>"},
		{"array unifies numbers", testkit.Snippet("var a = /*@*/[1, 2.5];"), "Array<Float>"},
		{"map literal", testkit.Snippet(`var m = /*@*/["a" => 1, "b" => 2];`), "Map<String, Int>"},
		{"string concat", testkit.Snippet(`var s = /*@*/"n" + 1;`), "String"},
		{"division", testkit.Snippet("var d = /*@*/4 / 2;"), "Float"},
		{"comparison", testkit.Snippet("var b = /*@*/1 < 2;"), "Bool"},
		{"coalesce", testkit.Snippet("var n:Null<Int> = null;\nvar v = /*@*/n ?? 0;"), "Int"},
		{"if without else", testkit.Snippet("var c = true;\nvar v = /*@*/if (c) 1;"), "Void"},
		{"if with else", testkit.Snippet("var c = true;\nvar v = /*@*/if (c) 1 else 2.5;"), "Float"},
		{"for over array", testkit.Snippet("var arr = [\"a\"];\nfor (s in arr) { var u = /*@*/s; }"), "String"},
		{"for over map key", testkit.Snippet("var m = [\"a\" => 1];\nfor (k => v in m) { var u = /*@*/k; }"), "String"},
		{"for over range", testkit.Snippet("for (i in 0...3) { var u = /*@*/i; }"), "Int"},
		{"regex", testkit.Snippet("var r = /*@*/~/ab+/i;"), "EReg"},
		{"untyped", testkit.Snippet("var u = /*@*/untyped foo();"), "Dynamic"},
		{"type check", testkit.Snippet("var f = /*@*/(1 : Float);"), "Float"},
		{"cast with type", testkit.Snippet("var x:Dynamic = 1;\nvar s = /*@*/cast(x, String);"), "String"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evalMarked(t, tc.src, 0)
			if got.String() != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestConstantFolding(t *testing.T) {
	cases := []struct {
		src  string
		want types.Constant
	}{
		{"var x = /*@*/1 + 2 * 3;", types.IntConst(7)},
		{"var x = /*@*/0x7fffffff + 1;", types.IntConst(-2147483648)},
		{"var x = /*@*/-5;", types.IntConst(-5)},
		{"var x = /*@*/!true;", types.BoolConst(false)},
		{"var x = /*@*/1 == 1;", types.BoolConst(true)},
		{`var x = /*@*/"a" + "b";`, types.StringConst("ab")},
		{"var x = /*@*/1 << 4;", types.IntConst(16)},
	}
	for _, tc := range cases {
		got := evalMarked(t, testkit.Snippet(tc.src), 0)
		if !got.Constant().Equal(tc.want) {
			t.Errorf("%s: constant %s, want %s", tc.src, got.Constant(), tc.want)
		}
	}
}

func TestFinalKeepsConstant(t *testing.T) {
	got := evalMarked(t, testkit.Snippet("final a = 3;\nvar b = 4;\nvar x = /*@*/a;\nvar y = /*@*/b;"), 0)
	if got.Constant().Kind != types.ConstInt || got.Constant().Int != 3 {
		t.Errorf("final constant lost: %s", got.Constant())
	}
	got = evalMarked(t, testkit.Snippet("final a = 3;\nvar b = 4;\nvar x = /*@*/a;\nvar y = /*@*/b;"), 1)
	if got.HasConstant() {
		t.Errorf("var must drop its constant, got %s", got.Constant())
	}
}

const generic = `
enum Box<T> { Full(v:T); Empty; }
enum Opt<T> { Some(v:T); None; }
enum Color { Red; Green; }
class Box2<T> {
	public var v:T;
	public function new(v:T) { this.v = v; }
}
class U {
	public static function id<T>(x:T):T { return x; }
	public static function pair<A>(a:A, b:A):Array<A> { return [a, b]; }
}
class Test {
	function run() {
		var full = /*@*/Full(3);
		var box = /*@*/new Box2("s");
		var same = /*@*/U.id("s");
		var both = /*@*/U.pair(1, 2.5);
		var doubled = /*@*/[1, 2].map(x -> x * 2);
		var empty = Empty;
		var o = Some("x");
		switch (o) {
			case Some(v): /*@*/v;
			case None: "";
		}
		var c = Red;
		var n = /*@*/switch (c) { case Red: 1; case Green: 2; };
		var partial = /*@*/switch (c) { case Red: 1; };
		var typed:Box2<Int> = /*@*/new Box2(1);
	}
}
`

func TestGenericInference(t *testing.T) {
	want := []string{
		"Box<Int>",
		"Box2<String>",
		"String",
		"Array<Float>",
		"Array<Int>",
		"String",
		"Int",
		"Void",
		"Box2<Int>",
	}
	env := testkit.Load(t, generic)
	ev := New(env.Model, Options{})
	for i, w := range want {
		got := ev.Evaluate(context.Background(), env.Marked(t, i), nil, nil, nil)
		if got.String() != w {
			t.Errorf("marker %d: got %s, want %s", i, got, w)
		}
	}
}

func TestEnumValueKeepsBindings(t *testing.T) {
	env := testkit.Load(t, generic)
	ev := New(env.Model, Options{})
	got := ev.Evaluate(context.Background(), env.Marked(t, 0), nil, nil, nil).Type()
	if !got.IsEnumValue() {
		t.Fatalf("Full(3) must be an enum value, got kind %s", got.Kind())
	}
	if b, ok := got.Bindings().Lookup("T"); !ok || !b.IsInt() {
		t.Errorf("snapshot must bind T=Int, got %v", got.Bindings())
	}
}

func TestMemberInference(t *testing.T) {
	env := testkit.Load(t, `
class H {
	static function take(s:String) {}
	static function g(x) { take(x); }
	static function twice(x:Int) { return x * 2; }
	static function pick(c:Bool) { if (c) return 1; return 2.5; }
	static var inferred = [1, 2];
	static function loop() { return loop(); }
}
`)
	ev := New(env.Model, Options{})
	self := env.Type(t, "H")
	cases := map[string]string{
		"g":        "(String) -> Void",
		"twice":    "(Int) -> Int",
		"pick":     "(Bool) -> Float",
		"inferred": "Array<Int>",
		"loop":     "() -> Unknown",
	}
	for name, want := range cases {
		got := ev.MemberType(env.Member(t, "H", name), self)
		if got.String() != want {
			t.Errorf("%s: got %s, want %s", name, got, want)
		}
	}
}

func TestUnknownArrayIsAbsorbed(t *testing.T) {
	diags := checkProgram(t, testkit.Snippet("var b = [];\nvar c:Array<String> = b;"), Options{})
	requireClean(t, diags)
}

func TestDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"incompatible var", testkit.Snippet(`var s:String = 1;`), diag.SemaIncompatibleType},
		{"incompatible assign", testkit.Snippet("var i = 1;\ni = \"s\";"), diag.SemaIncompatibleType},
		{"guard not bool", testkit.Snippet("if (1) trace(1);"), diag.SemaGuardNotBool},
		{"not callable", testkit.Snippet("var i = 1;\ni();"), diag.SemaNotCallable},
		{"bad regex", testkit.Snippet("var r = ~/(/;"), diag.SemaInvalidRegex},
		{"index out of bounds", testkit.Snippet("final a = [1, 2, 3];\na[5];"), diag.SemaIndexOutOfBounds},
		{"range out of bounds", testkit.Snippet("final a = [1, 2, 3];\nfor (i in 0...5) a[i];"), diag.SemaIndexOutOfBounds},
		{"unknown type", testkit.Snippet("var x = new Nope();"), diag.SemaUnknownType},
		{"type check", testkit.Snippet(`var x = ("s" : Int);`), diag.SemaTypeCheckFailed},
		{"missing field", "typedef Point = { x:Int, y:Int };\n" + testkit.Snippet("var p:Point = {x: 1};"), diag.SemaMissingMember},
		{"wrong field", "typedef Point = { x:Int, y:Int };\n" + testkit.Snippet(`var p:Point = {x: 1, y: "s"};`), diag.SemaWrongMemberType},
		{"no constructor", "class A {}\n" + testkit.Snippet("var a = new A();"), diag.SemaNoConstructor},
		{"argument count", "class F { public static function f(a:Int):Int { return a; } }\n" + testkit.Snippet("F.f(1, 2);"), diag.SemaArgumentCount},
		{"argument type", "class F { public static function f(a:Int):Int { return a; } }\n" + testkit.Snippet(`F.f("s");`), diag.SemaArgumentType},
		{"return mismatch", `class R { function f():Int { return "s"; } }`, diag.SemaReturnMismatch},
		{"super without parent", `class S { public function new() { super(); } }`, diag.SemaSuperWithoutParent},
		{"override", `
class Base { public function new() {} public function f():Int { return 1; } }
class Sub extends Base { override public function f():String { return "s"; } }
`, diag.SemaIncompatibleType},
		{"interface", `
interface Named { function name():String; }
class P implements Named { public function new() {} }
`, diag.SemaMissingMember},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireCode(t, checkProgram(t, tc.src, Options{}), tc.code)
		})
	}
}

func TestIncompatibleVarSuggestsTag(t *testing.T) {
	d := requireCode(t, checkProgram(t, testkit.Snippet(`var s:String = 1;`), Options{}), diag.SemaIncompatibleType)
	if d.Message != "Incompatible types: Int should be String" {
		t.Errorf("message = %q", d.Message)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Title != "Change type tag to Int" {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	if len(d.Fixes[0].Edits) != 1 || d.Fixes[0].Edits[0].NewText != "Int" {
		t.Errorf("edits = %+v", d.Fixes[0].Edits)
	}
}

func TestConstantGuard(t *testing.T) {
	src := testkit.Snippet("if (true) trace(1) else trace(2);")
	diags := checkProgram(t, src, Options{})
	requireCode(t, diags, diag.SemaConstantGuard)
	info := requireCode(t, diags, diag.SemaUnreachable)
	if info.Severity != diag.SevInfo {
		t.Errorf("unreachable must be info, got %s", info.Severity)
	}
	requireClean(t, checkProgram(t, src, Options{QuietGuards: true}))
}

func TestCleanPrograms(t *testing.T) {
	cases := []string{
		generic,
		testkit.Snippet("var s:String = \"a\";\nvar f:Float = 1;\nvar d:Dynamic = s;\nvar n:Null<Int> = null;"),
		testkit.Snippet("var arr = [1, 2, 3];\nfor (i in 0...3) arr[i];\nvar m = new Map<String, Int>();\nm.set(\"a\", 1);\nvar v = m[\"a\"];"),
		testkit.Snippet("var f = function(a:Int, b) return a;\nvar g:Int->Int = x -> x + 1;\nvar h = g(1);"),
		testkit.Snippet("try { throw \"e\"; } catch (e:String) { trace(e.length); }"),
		"class Base { public function new() {} public function f():Int { return 1; } }\n" +
			"class Sub extends Base { public function new() { super(); } override public function f():Int { return 2; } }",
	}
	for i, src := range cases {
		requireClean(t, checkProgram(t, src, Options{}))
		if t.Failed() {
			t.Fatalf("program %d", i)
		}
	}
}

func TestCacheReusesMembers(t *testing.T) {
	env := testkit.Load(t, "class H { static function twice(x:Int) { return x * 2; } }")
	cache := NewCache()
	ev := New(env.Model, Options{Cache: cache})
	member := env.Member(t, "H", "twice")
	self := env.Type(t, "H")
	first := ev.MemberType(member, self)
	second := ev.MemberType(member, self)
	if !first.Type().Equal(second.Type()) {
		t.Fatalf("cached type differs: %s vs %s", first, second)
	}
	if cache.Len() != 1 {
		t.Errorf("cache len = %d, want 1", cache.Len())
	}
	if hits, _ := cache.Stats(); hits < 1 {
		t.Errorf("second lookup must hit the cache")
	}
	cache.Invalidate(env.Tab.Member(member).Decl)
	if cache.Len() != 0 {
		t.Errorf("invalidate left %d entries", cache.Len())
	}
}

func TestCancelledCheck(t *testing.T) {
	env := testkit.Load(t, testkit.Snippet("var a = 1;"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(env.Model, Options{}).CheckFile(ctx, env.File, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestInventory(t *testing.T) {
	env := testkit.Load(t, testkit.Snippet("var a = 1;\nvar s = \"x\";"))
	entries := New(env.Model, Options{}).Inventory(context.Background(), env.File)
	got := map[string]string{}
	for _, e := range entries {
		got[e.Kind.String()+" "+e.Name] = e.Type.String()
	}
	want := map[string]string{
		"method run": "() -> Void",
		"var a":      "Int",
		"var s":      "String",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
	if !slices.IsSortedFunc(entries, func(a, b Entry) int { return int(a.Span.Start) - int(b.Span.Start) }) {
		t.Errorf("entries must be in source order")
	}
}

func TestTypeAt(t *testing.T) {
	env := testkit.Load(t, testkit.Snippet("var a:Array<Int> = [1];\n/*@*/a[0];"))
	off := env.B.Nodes.Get(env.Marked(t, 0)).Span.Start
	h, node, ok := New(env.Model, Options{}).TypeAt(context.Background(), env.File, off)
	if !ok || !node.IsValid() {
		t.Fatalf("no expression at %d", off)
	}
	if h.String() != "Array<Int>" {
		t.Errorf("got %s, want Array<Int>", h)
	}
}

func TestScope(t *testing.T) {
	var nilScope *Scope
	nilScope.Push()
	nilScope.Define("x", types.UnknownHolder())
	if _, ok := nilScope.Lookup("x"); ok {
		t.Errorf("nil scope must stay empty")
	}

	s := NewScope()
	s.Define("a", types.Hold(types.Void()))
	s.Push()
	s.Define("a", types.Hold(types.Dynamic()))
	if h, _ := s.Lookup("a"); !h.IsDynamic() {
		t.Errorf("inner frame must shadow")
	}
	s.Pop()
	if h, _ := s.Lookup("a"); !h.Type().IsVoid() {
		t.Errorf("pop must restore the outer binding")
	}
}

func TestSpanInvariants(t *testing.T) {
	env := testkit.Load(t, generic)
	if err := testkit.CheckSpanInvariants(env.B, env.File, env.FS.Get(env.Src)); err != nil {
		t.Error(err)
	}
}

func TestInterfaceSignaturesAreNotImplementations(t *testing.T) {
	src := `
interface Named { function name():String; }
typedef HasName = { function name():String; }
class P implements Named { public function new() {} }
class Main { static function main() { var n:HasName = new P(); } }
`
	var missing int
	for _, d := range checkProgram(t, src, Options{}) {
		if d.Code == diag.SemaMissingMember {
			missing++
		}
	}
	if missing < 2 {
		t.Fatalf("want the interface and the structure to report name, got %d", missing)
	}

	requireClean(t, checkProgram(t, `
interface Named { function name():String; }
typedef HasName = { function name():String; }
class Base { public function name():String { return "b"; } }
class P extends Base implements Named { public function new() {} }
class Main { static function main() { var n:HasName = new P(); } }
`, Options{}))
}

func TestFinalAssignments(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"local", testkit.Snippet("final a = 1;\na = 2;")},
		{"compound", testkit.Snippet("final a = 1;\na += 2;")},
		{"increment", testkit.Snippet("final a = 1;\na++;")},
		{"static field", "class Z { static final z = 1; static function f() { z = 3; } }"},
		{"instance field", "class Z { final z:Int = 1; public function new() {} function f() { this.z = 3; } }"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := requireCode(t, checkProgram(t, tc.src, Options{}), diag.SemaImmutableAssign)
			if d.Severity != diag.SevError {
				t.Errorf("severity = %s", d.Severity)
			}
		})
	}

	requireClean(t, checkProgram(t, `
class Z {
	final z:Int;
	final w:Int;
	public function new() { z = 1; this.w = 2; }
}
`, Options{}))
	requireClean(t, checkProgram(t, testkit.Snippet("final a = [1];\na[0] = 2;\nvar b = a;\nb = [3];"), Options{}))
}

func TestTypePathSegments(t *testing.T) {
	decls := "\nclass Outer {}\nclass Inner { public static var x:Int = 1; }\nenum Color { Red; Green; }\n"
	cases := []struct {
		expr string
		want string
	}{
		{"Outer.Inner.x", "Int"},
		{"Outer.Color.Red", "Color"},
		{"Outer.Inner", "Class<Inner>"},
		{"Outer.missing", "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got := evalMarked(t, testkit.Snippet("var v = /*@*/"+tc.expr+";")+decls, 0)
			if got.String() != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestArgumentCountMessage(t *testing.T) {
	cases := []struct {
		decl string
		call string
		want string
	}{
		{"public static function f(a:Int):Int { return a; }", "F.f(1, 2);", "expected 1, got 2"},
		{"public static function f(a:Int, ?b:Int):Int { return a; }", "F.f();", "expected 1 to 2, got 0"},
		{"public static function f(a:Int, ?b:Int):Int { return a; }", "F.f(1, 2, 3);", "expected 1 to 2, got 3"},
		{"public static function f(a:Int, ...rest:Int):Int { return a; }", "F.f();", "expected at least 1, got 0"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			src := "class F { " + tc.decl + " }\n" + testkit.Snippet(tc.call)
			d := requireCode(t, checkProgram(t, src, Options{}), diag.SemaArgumentCount)
			if !strings.HasSuffix(d.Message, tc.want) {
				t.Errorf("message %q, want suffix %q", d.Message, tc.want)
			}
		})
	}
}
