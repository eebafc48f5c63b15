package compat

import (
	"testing"

	"hxinfer/internal/ast"
	"hxinfer/internal/testkit"
	"hxinfer/internal/types"
)

const program = `
class Animal {}
class Dog extends Animal {}
class Cat extends Animal {}
interface Named {}
class Person implements Named {}
class Base<T> {}
class Child extends Base<Int> {}
abstract Meters(Float) from Float to Float {}
enum abstract Kind(Int) { var A = 1; }
enum Color { Red; Green; }
enum Shape { Dot; }
typedef Point = { x:Int, y:Int };
typedef Opt = { x:Int, ?y:Int };
typedef Chain = { next:Chain, v:Int };
typedef Link = { next:Link, v:Int };
@:structInit class Opts {
	var a:Int;
	var b:String;
	public function new(a:Int, ?b:String) {}
}
class Test {
	function run() {
		var full = /*@*/{x: 1, y: 2, z: "s"};
		var half = /*@*/{x: 1};
		var bad = /*@*/{x: 1, y: "s"};
		var o1 = /*@*/{a: 1};
		var o2 = /*@*/{b: "x"};
	}
}
`

// literalTyper types object-literal fields from their literal values.
type literalTyper struct{ env *testkit.Env }

func (lt literalTyper) MemberType(member ast.MemberID, owner types.Type) types.Holder {
	m := lt.env.Model
	mm := m.Tab.Member(member)
	if !mm.Type.IsValid() && mm.Init.IsValid() {
		if lit, ok := lt.env.B.Nodes.Literal(mm.Init); ok {
			switch lit.Kind {
			case ast.LitInt:
				return types.Hold(m.Int())
			case ast.LitString:
				return types.Hold(m.StringType())
			}
		}
	}
	return TagTyper{Model: m}.MemberType(member, owner)
}

func setup(t *testing.T) (*testkit.Env, *Engine) {
	t.Helper()
	env := testkit.Load(t, program)
	return env, New(env.Model, literalTyper{env: env})
}

func object(t *testing.T, env *testkit.Env, n int) types.Type {
	t.Helper()
	node := env.Marked(t, n)
	decl, ok := env.Tab.ObjectDecl(node)
	if !ok {
		t.Fatalf("marker %d is not an object literal", n)
	}
	return env.Model.ObjectInstance(decl, "{...}")
}

func TestReflexivity(t *testing.T) {
	env, e := setup(t)
	m := env.Model
	color := env.Type(t, "Color")
	red := m.MemberTag(env.Member(t, "Color", "Red"))
	list := []types.Type{
		m.Int(), m.Float(), m.Bool(), m.StringType(),
		m.Array(m.Int()), m.Map(m.StringType(), m.Array(m.Int())),
		env.Type(t, "Dog"), color, red,
		types.Function([]types.Arg{{Type: m.Int()}}, m.StringType(), 0),
		env.Type(t, "Point"),
	}
	for _, ty := range list {
		if !e.CanAssignType(ty, ty) {
			t.Errorf("%s must accept itself", ty)
		}
	}
}

func TestAbsorption(t *testing.T) {
	env, e := setup(t)
	m := env.Model
	list := []types.Type{m.Int(), m.StringType(), env.Type(t, "Dog"), types.Void(), m.Array(m.Bool())}
	for _, x := range list {
		for _, special := range []types.Type{types.Unknown(), types.Dynamic()} {
			if !e.CanAssignType(special, x) || !e.CanAssignType(x, special) {
				t.Errorf("%s must absorb %s both ways", special, x)
			}
		}
	}
	if !e.CanAssignType(env.Type(t, "Any"), env.Type(t, "Dog")) {
		t.Errorf("Any must accept everything")
	}
}

func TestNullTransparency(t *testing.T) {
	env, e := setup(t)
	m := env.Model
	for _, ty := range []types.Type{m.Int(), m.StringType(), env.Type(t, "Dog")} {
		n := m.WrapInNull(ty)
		if !e.CanAssignType(n, ty) || !e.CanAssignType(ty, n) {
			t.Errorf("Null<%s> must behave as %s", ty, ty)
		}
	}
	if e.CanAssignType(m.WrapInNull(m.Int()), m.StringType()) {
		t.Errorf("Null<Int> must reject String")
	}
}

func TestNominal(t *testing.T) {
	env, e := setup(t)
	m := env.Model
	cases := []struct {
		to, from types.Type
		want     bool
	}{
		{m.Float(), m.Int(), true},
		{m.Int(), m.Float(), false},
		{m.Int(), m.Bool(), false},
		{env.Type(t, "Animal"), env.Type(t, "Dog"), true},
		{env.Type(t, "Dog"), env.Type(t, "Animal"), false},
		{env.Type(t, "Dog"), env.Type(t, "Cat"), false},
		{env.Type(t, "Named"), env.Type(t, "Person"), true},
		{env.Type(t, "Base").WithSpecifics(m.Int()), env.Type(t, "Child"), true},
		{env.Type(t, "Base").WithSpecifics(m.StringType()), env.Type(t, "Child"), false},
		{m.Array(m.Int()), m.Array(m.StringType()), false},
		{m.Array(m.Int()), env.Type(t, "Array"), true},
		{m.Array(types.TypeParam("T")), m.Array(m.StringType()), true},
		{env.Type(t, "Meters"), m.Float(), true},
		{m.Float(), env.Type(t, "Meters"), true},
		{m.StringType(), env.Type(t, "Meters"), false},
		{env.Type(t, "Color"), env.Type(t, "Shape"), false},
		{types.TypeParam("T"), m.Int(), true},
		{m.Int(), types.TypeParam("T"), true},
	}
	for _, tc := range cases {
		if got := e.CanAssignType(tc.to, tc.from); got != tc.want {
			t.Errorf("CanAssign(%s, %s) = %v, want %v", tc.to, tc.from, got, tc.want)
		}
	}
}

func TestEnums(t *testing.T) {
	env, e := setup(t)
	color := env.Type(t, "Color")
	red := env.Model.MemberTag(env.Member(t, "Color", "Red"))
	dot := env.Model.MemberTag(env.Member(t, "Shape", "Dot"))
	if !e.CanAssignType(color, red) {
		t.Errorf("Color must accept Red")
	}
	if e.CanAssignType(color, dot) {
		t.Errorf("Color must reject Shape.Dot")
	}
	ev := env.Type(t, "EnumValue")
	if !e.CanAssignType(ev, red) || !e.CanAssignType(ev, dot) {
		t.Errorf("EnumValue must accept every enum value")
	}
}

func TestEnumAbstractScope(t *testing.T) {
	env, e := setup(t)
	kind := env.Type(t, "Kind")
	if e.CanAssign(types.Hold(kind), types.Hold(env.Model.Int()), nil) {
		t.Fatalf("Int must not flow into Kind outside its declaration")
	}
	decl, _ := env.Tab.LookupType("Kind")
	if !e.CanAssign(types.Hold(kind), types.Hold(env.Model.Int()), &Context{Scope: decl}) {
		t.Fatalf("Int must flow into Kind inside its declaration")
	}
}

func TestFunctionVariance(t *testing.T) {
	env, e := setup(t)
	m := env.Model
	fn := func(arg, ret types.Type) types.Type {
		return types.Function([]types.Arg{{Type: arg}}, ret, 0)
	}
	cases := []struct {
		to, from types.Type
		want     bool
	}{
		{fn(m.Int(), m.Float()), fn(m.Float(), m.Int()), true},
		{fn(m.Float(), m.Int()), fn(m.Int(), m.Int()), false},
		{fn(m.Int(), m.Int()), fn(m.Int(), m.Float()), false},
		{fn(m.Int(), types.Void()), fn(m.Int(), m.StringType()), true},
		{fn(m.Int(), m.Int()), types.Function(nil, m.Int(), 0), false},
		{types.Function(nil, m.Int(), 0), fn(types.Void(), m.Int()), true},
		{env.Type(t, "Function"), fn(m.Int(), m.Int()), true},
	}
	for _, tc := range cases {
		if got := e.CanAssignType(tc.to, tc.from); got != tc.want {
			t.Errorf("CanAssign(%s, %s) = %v, want %v", tc.to, tc.from, got, tc.want)
		}
	}
}

func TestStructural(t *testing.T) {
	env, e := setup(t)
	point := types.Hold(env.Type(t, "Point"))

	if !e.CanAssign(point, types.Hold(object(t, env, 0)), nil) {
		t.Errorf("extra fields must be ignored")
	}

	var actx Context
	if e.CanAssign(point, types.Hold(object(t, env, 1)), &actx) {
		t.Fatalf("{x} must not satisfy Point")
	}
	if len(actx.Missing) != 1 || actx.Missing[0].Name != "y" {
		t.Fatalf("missing = %+v", actx.Missing)
	}

	actx = Context{}
	if e.CanAssign(point, types.Hold(object(t, env, 2)), &actx) {
		t.Fatalf("y:String must not satisfy Point")
	}
	if len(actx.WrongType) != 1 {
		t.Fatalf("wrong type = %+v", actx.WrongType)
	}
	w := actx.WrongType[0]
	if w.Name != "y" || w.FromText != "String" || w.ToText != "Int" || !w.FromNode.IsValid() {
		t.Errorf("wrong type record = %+v", w)
	}

	if !e.CanAssignType(env.Type(t, "Opt"), object(t, env, 1)) {
		t.Errorf("optional field may be missing")
	}
	if !e.CanAssignType(env.Type(t, "Chain"), env.Type(t, "Link")) {
		t.Errorf("recursive structures must match")
	}
}

func TestStructInit(t *testing.T) {
	env, e := setup(t)
	opts := types.Hold(env.Type(t, "Opts"))
	if !e.CanAssign(opts, types.Hold(object(t, env, 3)), nil) {
		t.Errorf("optional constructor parameter may be omitted")
	}
	var actx Context
	if e.CanAssign(opts, types.Hold(object(t, env, 4)), &actx) {
		t.Fatalf("missing required a must fail")
	}
	if len(actx.Missing) != 1 || actx.Missing[0].Name != "a" {
		t.Fatalf("missing = %+v", actx.Missing)
	}
}

func TestUnify(t *testing.T) {
	env, e := setup(t)
	m := env.Model
	h := types.Hold
	cases := []struct {
		name string
		a, b types.Holder
		rule Rule
		want string
	}{
		{"numeric", h(m.Int()), h(m.Float()), RuleDefault, "Float"},
		{"same", h(m.StringType()), h(m.StringType()), RuleDefault, "String"},
		{"unknown", types.UnknownHolder(), h(m.Int()), RuleDefault, "Int"},
		{"prefer void", h(m.Int()), h(types.Void()), RulePreferVoid, "Void"},
		{"ignore void", h(types.Void()), h(m.Int()), RuleIgnoreVoid, "Int"},
		{"null", h(m.WrapInNull(types.Unknown())), h(m.Int()), RuleDefault, "Null<Int>"},
		{"super", h(env.Type(t, "Dog")), h(env.Type(t, "Cat")), RuleDefault, "Animal"},
		{"sub", h(env.Type(t, "Animal")), h(env.Type(t, "Dog")), RuleDefault, "Animal"},
		{"unrelated", h(m.StringType()), h(m.Bool()), RuleDefault, "Dynamic"},
	}
	for _, tc := range cases {
		if got := e.Unify(tc.a, tc.b, tc.rule).String(); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}

	one := h(m.Int().WithConstant(types.IntConst(1)))
	if got := e.Unify(one, one, RuleDefault); !got.HasConstant() {
		t.Errorf("equal constants must survive")
	}
	two := h(m.Int().WithConstant(types.IntConst(2)))
	if got := e.Unify(one, two, RuleDefault); got.HasConstant() {
		t.Errorf("different constants must be dropped")
	}
	all := e.UnifyAll([]types.Holder{h(m.Int()), h(types.Void()), h(m.Float())}, RuleIgnoreVoid)
	if got := all.String(); got != "Float" {
		t.Errorf("UnifyAll = %s", got)
	}
}
