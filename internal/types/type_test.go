package types

import (
	"testing"
)

func TestTypeStringAndEqual(t *testing.T) {
	intT := Primitive(NameInt, 1)
	strT := Primitive(NameString, 2)
	fn := Function([]Arg{{Name: "a", Type: intT}, {Name: "b", Type: strT, Optional: true}}, Void(), 0)
	if got := fn.String(); got != "(Int, ?String) -> Void" {
		t.Fatalf("function string = %q", got)
	}
	arr := Instance(3, "Array", intT)
	if got := arr.String(); got != "Array<Int>" {
		t.Fatalf("array string = %q", got)
	}
	if !arr.Equal(Instance(3, "Array", intT.WithConstant(IntConst(4)))) {
		t.Errorf("constants must not affect equality")
	}
	if arr.Equal(Instance(3, "Array", strT)) {
		t.Errorf("different specifics must differ")
	}
	if !arr.SameClass(Instance(3, "Array", strT)) {
		t.Errorf("same nominal class regardless of specifics")
	}
	if Unknown().String() != "Unknown" || !Unknown().IsUnknown() {
		t.Errorf("zero value must be Unknown")
	}
}

func TestWithConstantCopies(t *testing.T) {
	base := Primitive(NameInt, 1)
	withC := base.WithConstant(IntConst(7))
	if base.HasConstant() {
		t.Fatalf("original mutated")
	}
	if c := withC.Constant(); c.Kind != ConstInt || c.Int != 7 {
		t.Fatalf("constant = %+v", c)
	}
	h := Hold(withC)
	h2 := h.WithoutConstant()
	if !h.HasConstant() || h2.HasConstant() {
		t.Fatalf("holder copies broken")
	}
}

func TestUnwrapNull(t *testing.T) {
	intT := Primitive(NameInt, 1)
	n := Wrapped(5, "Null", WrapNull, intT)
	if !n.IsNull() || !n.UnwrapNull().Equal(intT) {
		t.Fatalf("unwrap failed: %s", n.UnwrapNull())
	}
	if got := n.String(); got != "Null<Int>" {
		t.Errorf("null string = %q", got)
	}
	if !intT.UnwrapNull().Equal(intT) {
		t.Errorf("non-null must be returned as is")
	}
}

func TestSubstitute(t *testing.T) {
	intT := Primitive(NameInt, 1)
	arr := Instance(3, "Array", TypeParam("T"))
	got := Substitute(arr, Bindings{{Name: "T", Type: intT}})
	if got.String() != "Array<Int>" {
		t.Fatalf("substitute = %s", got)
	}
	if arr.String() != "Array<T>" {
		t.Fatalf("input mutated: %s", arr)
	}

	cyclic := Bindings{{Name: "T", Type: TypeParam("U")}, {Name: "U", Type: TypeParam("T")}}
	if got := Substitute(TypeParam("T"), cyclic); got.Name() != "U" {
		t.Fatalf("one level of substitution expected, got %s", got)
	}

	fn := Function([]Arg{{Type: TypeParam("T")}}, TypeParam("T"), 0)
	if !HasTypeParams(fn) {
		t.Fatalf("T must be detected")
	}
	if HasTypeParams(Substitute(fn, Bindings{{Name: "T", Type: intT}})) {
		t.Fatalf("T must be gone")
	}
}

func TestConstantString(t *testing.T) {
	cases := []struct {
		c    Constant
		want string
	}{
		{IntConst(3), "3"},
		{FloatConst(1.5), "1.5"},
		{StringConst("a"), `"a"`},
		{BoolConst(true), "true"},
		{NullConst(), "null"},
		{RangeConst(0, 3), "0...3"},
		{ArrayConst([]Constant{IntConst(1), IntConst(2)}), "[1, 2]"},
	}
	for _, tc := range cases {
		if got := tc.c.String(); got != tc.want {
			t.Errorf("%+v: got %q, want %q", tc.c, got, tc.want)
		}
	}
}
