package parser

import (
	"testing"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.Builder, *ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.hx", []byte(src))
	bag := diag.NewBag(0)
	b := ast.NewBuilder(ast.Hints{})
	res := ParseFile(fs.Get(id), b, Options{Reporter: diag.BagReporter{Bag: bag}})
	return b, b.File(res.File), bag
}

func parseExprSource(t *testing.T, src string) (*ast.Builder, ast.NodeID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("expr.hx", []byte(src))
	bag := diag.NewBag(0)
	b := ast.NewBuilder(ast.Hints{})
	root, _ := ParseExpression(fs.Get(id), b, Options{Reporter: diag.BagReporter{Bag: bag}})
	return b, root, bag
}

func requireNoDiags(t *testing.T, bag *diag.Bag) {
	t.Helper()
	for _, d := range bag.Items() {
		t.Errorf("unexpected diagnostic: %s %s", d.Code, d.Message)
	}
}

func TestParseClassDecl(t *testing.T) {
	b, file, bag := parseSource(t, `package demo;
import haxe.ds.StringMap;

@:keep
class Box<T> extends Base implements IThing {
	public var value:T;
	static var count:Int = 0;
	var items:Array<Array<Int>> = [];
	public function new(v:T) { this.value = v; }
	public function get<R>(?fallback:R, ...rest:Int):T return value;
}
`)
	requireNoDiags(t, bag)
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(file.Decls))
	}
	d := b.Decl(file.Decls[0])
	if d.Kind != ast.DeclClass || d.Name != "Box" {
		t.Fatalf("unexpected decl %s %q", d.Kind, d.Name)
	}
	if !ast.HasMeta(d.Meta, "keep") {
		t.Errorf("meta @:keep lost: %+v", d.Meta)
	}
	if len(d.TypeParams) != 1 || d.TypeParams[0].Name != "T" {
		t.Errorf("type params: %+v", d.TypeParams)
	}
	if len(d.Extends) != 1 || len(d.Implements) != 1 {
		t.Errorf("extends=%d implements=%d", len(d.Extends), len(d.Implements))
	}
	if len(d.Members) != 5 {
		t.Fatalf("expected 5 members, got %d", len(d.Members))
	}
	if got := b.Types.String(b.Member(d.Members[2]).Type); got != "Array<Array<Int>>" {
		t.Errorf("items type = %q", got)
	}
	if !b.Member(d.Members[1]).Static {
		t.Errorf("count must be static")
	}
	ctor := b.Member(d.Members[3])
	if !ctor.IsConstructor() || !ctor.Body.IsValid() {
		t.Fatalf("constructor not parsed: %+v", ctor)
	}
	get := b.Member(d.Members[4])
	if len(get.TypeParams) != 1 || len(get.Params) != 2 {
		t.Fatalf("get signature: tparams=%d params=%d", len(get.TypeParams), len(get.Params))
	}
	first, _ := b.Nodes.Param(get.Params[0])
	rest, _ := b.Nodes.Param(get.Params[1])
	if !first.Optional || !rest.Rest {
		t.Errorf("param flags: optional=%v rest=%v", first.Optional, rest.Rest)
	}
	if b.Nodes.KindOf(get.Body) != ast.KindReturn {
		t.Errorf("expression body kind = %s", b.Nodes.KindOf(get.Body))
	}
}

func TestParseEnumAbstractTypedef(t *testing.T) {
	b, file, bag := parseSource(t, `
enum Option<T> { Some(v:T); None; }
abstract Meters(Float) from Float to Float {}
typedef Point = { x:Int, ?y:Int };
enum abstract Color(Int) { var Red = 1; var Green = 2; }
`)
	requireNoDiags(t, bag)
	if len(file.Decls) != 4 {
		t.Fatalf("expected 4 decls, got %d", len(file.Decls))
	}
	enum := b.Decl(file.Decls[0])
	if enum.Kind != ast.DeclEnum || len(enum.Members) != 2 {
		t.Fatalf("enum: %s members=%d", enum.Kind, len(enum.Members))
	}
	some := b.Member(enum.Members[0])
	if some.Kind != ast.MemberEnumCtor || len(some.Params) != 1 {
		t.Errorf("Some ctor: %+v", some)
	}
	abs := b.Decl(file.Decls[1])
	if abs.Kind != ast.DeclAbstract || len(abs.From) != 1 || len(abs.To) != 1 || !abs.Underlying.IsValid() {
		t.Errorf("abstract: %+v", abs)
	}
	td := b.Decl(file.Decls[2])
	if got := b.Types.String(td.Underlying); got != "{ x : Int, ?y : Int }" {
		t.Errorf("typedef = %q", got)
	}
	color := b.Decl(file.Decls[3])
	if !color.EnumAbstract || len(color.Members) != 2 {
		t.Errorf("enum abstract: %+v", color)
	}
}

func TestParsePrecedence(t *testing.T) {
	b, root, bag := parseExprSource(t, "1 + 2 * 3;")
	requireNoDiags(t, bag)
	add, ok := b.Nodes.Binary(root)
	if !ok || add.Op != ast.BinAdd {
		t.Fatalf("root is not +: %s", b.Nodes.KindOf(root))
	}
	if mul, ok := b.Nodes.Binary(add.Right); !ok || mul.Op != ast.BinMul {
		t.Fatalf("right operand is not *")
	}

	b, root, bag = parseExprSource(t, "a >> 2 >>> 1;")
	requireNoDiags(t, bag)
	ushr, ok := b.Nodes.Binary(root)
	if !ok || ushr.Op != ast.BinUShr {
		t.Fatalf("expected >>> at root")
	}
	if shr, ok := b.Nodes.Binary(ushr.Left); !ok || shr.Op != ast.BinShr {
		t.Fatalf("expected >> on the left")
	}

	b, root, bag = parseExprSource(t, "x = y ?? z ? 1 : 2;")
	requireNoDiags(t, bag)
	assign, ok := b.Nodes.Assign(root)
	if !ok || assign.Compound {
		t.Fatalf("expected plain assignment")
	}
	tern, ok := b.Nodes.Ternary(assign.Value)
	if !ok {
		t.Fatalf("expected ternary value, got %s", b.Nodes.KindOf(assign.Value))
	}
	if c, ok := b.Nodes.Binary(tern.Cond); !ok || c.Op != ast.BinCoalesce {
		t.Fatalf("expected ?? condition")
	}
}

func TestParseSwitchCaptures(t *testing.T) {
	b, root, bag := parseExprSource(t, "switch (opt) { case Some(v): v; case None: 0; default: 1; }")
	requireNoDiags(t, bag)
	sw, ok := b.Nodes.Switch(root)
	if !ok {
		t.Fatalf("expected switch, got %s", b.Nodes.KindOf(root))
	}
	if len(sw.Cases) != 2 || !sw.Default.IsValid() {
		t.Fatalf("cases=%d default=%v", len(sw.Cases), sw.Default.IsValid())
	}
	c, _ := b.Nodes.Case(sw.Cases[0])
	if len(c.Captures) != 1 {
		t.Fatalf("expected one capture, got %d", len(c.Captures))
	}
	capture, _ := b.Nodes.Capture(c.Captures[0])
	if capture.Name != "v" || capture.Ctor != "Some" || capture.Index != 0 {
		t.Errorf("capture = %+v", capture)
	}
	call, _ := b.Nodes.Call(c.Patterns[0])
	if call.Args[0] != c.Captures[0] {
		t.Errorf("capture must replace the pattern argument")
	}
	none, _ := b.Nodes.Case(sw.Cases[1])
	if len(none.Captures) != 0 {
		t.Errorf("None must not capture")
	}
}

func TestParseLiterals(t *testing.T) {
	b, root, bag := parseExprSource(t, `
var f = (a:Int, b) -> a + b;
var g = x -> x * 2;
var t = (g : Int -> Int);
var m = ["a" => 1, "b" => 2];
var o = {x: 1, "y": 2};
var r = ~/ab+/gi;
`)
	requireNoDiags(t, bag)
	block, ok := b.Nodes.Block(root)
	if !ok || len(block.Stmts) != 6 {
		t.Fatalf("expected 6 statements")
	}
	init := func(i int) ast.NodeID {
		v, _ := b.Nodes.Var(block.Stmts[i])
		return v.Init
	}

	fn, ok := b.Nodes.Function(init(0))
	if !ok || !fn.Arrow || len(fn.Params) != 2 {
		t.Fatalf("arrow with two params expected")
	}
	if pa, _ := b.Nodes.Param(fn.Params[0]); !pa.Type.IsValid() {
		t.Errorf("a must be typed")
	}
	if g, ok := b.Nodes.Function(init(1)); !ok || len(g.Params) != 1 {
		t.Errorf("single-param arrow expected")
	}
	check, ok := b.Nodes.Cast(init(2))
	if !ok || b.Nodes.KindOf(init(2)) != ast.KindTypeCheck {
		t.Fatalf("type check expected, got %s", b.Nodes.KindOf(init(2)))
	}
	if got := b.Types.String(check.Type); got != "(Int) -> Int" {
		t.Errorf("type check type = %q", got)
	}
	if m, ok := b.Nodes.MapLit(init(3)); !ok || len(m.Keys) != 2 || len(m.Values) != 2 {
		t.Errorf("map literal expected")
	}
	obj, ok := b.Nodes.ObjectLit(init(4))
	if !ok || len(obj.Fields) != 2 || obj.Fields[1].Name != "y" {
		t.Errorf("object literal expected: %+v", obj)
	}
	re, ok := b.Nodes.Regex(init(5))
	if !ok || re.Pattern != "ab+" || re.Flags != "gi" {
		t.Errorf("regex = %+v", re)
	}
}

func TestParseLinksBodies(t *testing.T) {
	b, file, bag := parseSource(t, "class A { function run() { var x = 1; x + 2; } }")
	requireNoDiags(t, bag)
	d := b.Decl(file.Decls[0])
	run := d.Members[0]
	body := b.Member(run).Body
	block, _ := b.Nodes.Block(body)
	sum := block.Stmts[1]
	if b.Nodes.Get(sum).Owner != run {
		t.Errorf("owner not linked")
	}
	bin, _ := b.Nodes.Binary(sum)
	if b.Nodes.Parent(bin.Left) != sum || b.Nodes.Parent(sum) != body {
		t.Errorf("parent chain broken")
	}
}

func TestParseErrors(t *testing.T) {
	_, _, bag := parseExprSource(t, "var a = 1\nvar b = 2;")
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.SynExpectSemicolon {
		t.Fatalf("expected one missing-semicolon error, got %+v", items)
	}

	_, file, bag := parseSource(t, "class A { function f( { } }\nclass B {}")
	if !bag.HasErrors() {
		t.Fatalf("expected errors for broken parameter list")
	}
	if len(file.Decls) == 0 {
		t.Fatalf("parser must recover and keep declarations")
	}
}
