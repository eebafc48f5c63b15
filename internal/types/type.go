package types

import (
	"strings"

	"hxinfer/internal/ast"
)

// Arg is one parameter of a function type.
type Arg struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool
}

// Type is an immutable type value. The zero value is Unknown.
type Type struct {
	kind      Kind
	name      string
	decl      ast.DeclID
	wrapper   Wrapper
	specifics []Type
	args      []Arg
	ret       *Type
	member    ast.MemberID // function: declaring member; enum value: constructor
	enum      *Type        // enum value: the enum class instance
	bindings  Bindings     // enum value: resolver snapshot; anonymous instance: generic context
	constant  Constant
}

func Unknown() Type { return Type{} }
func Dynamic() Type { return Type{kind: KindDynamic, name: "Dynamic"} }
func Void() Type    { return Type{kind: KindVoid, name: "Void"} }

func TypeParam(name string) Type { return Type{kind: KindTypeParam, name: name} }

// Primitive builds Int, Float, Bool or String; decl links the core
// declaration used for member access.
func Primitive(name string, decl ast.DeclID) Type {
	return Type{kind: KindPrimitive, name: name, decl: decl}
}

// Instance builds a nominal instance. name is used for presentation only.
func Instance(decl ast.DeclID, name string, specifics ...Type) Type {
	return Type{kind: KindClass, name: name, decl: decl, specifics: cloneTypes(specifics)}
}

// Wrapped builds Null<T>, Class<T> or Enum<T>.
func Wrapped(decl ast.DeclID, name string, w Wrapper, inner Type) Type {
	return Type{kind: KindClass, name: name, decl: decl, wrapper: w, specifics: []Type{inner}}
}

// Function builds a function type; member may be ast.NoMemberID.
func Function(args []Arg, ret Type, member ast.MemberID) Type {
	r := ret
	return Type{kind: KindFunction, args: append([]Arg(nil), args...), ret: &r, member: member}
}

// EnumValue builds the type of one constructor's value.
func EnumValue(enum Type, ctor ast.MemberID, ctorName string, snapshot Bindings) Type {
	e := enum
	return Type{kind: KindEnumValue, name: ctorName, decl: enum.decl, enum: &e, member: ctor, bindings: snapshot}
}

func cloneTypes(in []Type) []Type {
	if len(in) == 0 {
		return nil
	}
	return append([]Type(nil), in...)
}

func (t Type) Kind() Kind               { return t.kind }
func (t Type) Name() string             { return t.name }
func (t Type) Decl() ast.DeclID         { return t.decl }
func (t Type) Wrapper() Wrapper         { return t.wrapper }
func (t Type) Specifics() []Type        { return t.specifics }
func (t Type) Args() []Arg              { return t.args }
func (t Type) Member() ast.MemberID     { return t.member }
func (t Type) Bindings() Bindings       { return t.bindings }
func (t Type) Constant() Constant       { return t.constant }
func (t Type) HasConstant() bool        { return t.constant.IsSet() }
func (t Type) IsUnknown() bool          { return t.kind == KindUnknown }
func (t Type) IsDynamic() bool          { return t.kind == KindDynamic }
func (t Type) IsVoid() bool             { return t.kind == KindVoid }
func (t Type) IsPrimitive() bool        { return t.kind == KindPrimitive }
func (t Type) IsClass() bool            { return t.kind == KindClass }
func (t Type) IsFunction() bool         { return t.kind == KindFunction }
func (t Type) IsEnumValue() bool        { return t.kind == KindEnumValue }
func (t Type) IsTypeParam() bool        { return t.kind == KindTypeParam }
func (t Type) IsNull() bool             { return t.kind == KindClass && t.wrapper == WrapNull }
func (t Type) IsInt() bool              { return t.kind == KindPrimitive && t.name == NameInt }
func (t Type) IsFloat() bool            { return t.kind == KindPrimitive && t.name == NameFloat }
func (t Type) IsBool() bool             { return t.kind == KindPrimitive && t.name == NameBool }
func (t Type) IsString() bool           { return t.kind == KindPrimitive && t.name == NameString }
func (t Type) IsNumeric() bool          { return t.IsInt() || t.IsFloat() }
func (t Type) IsUnknownOrDynamic() bool { return t.kind == KindUnknown || t.kind == KindDynamic }

// Ret returns the return type of a function, Unknown otherwise.
func (t Type) Ret() Type {
	if t.ret == nil {
		return Unknown()
	}
	return *t.ret
}

// EnumType returns the enum class instance of an enum value.
func (t Type) EnumType() Type {
	if t.enum == nil {
		return Unknown()
	}
	return *t.enum
}

// Specific returns the i-th generic argument or Unknown.
func (t Type) Specific(i int) Type {
	if i < 0 || i >= len(t.specifics) {
		return Unknown()
	}
	return t.specifics[i]
}

func (t Type) isAnonymous() bool { return t.kind == KindClass && strings.HasPrefix(t.name, "{") }

// IsNamed reports a primitive or class instance with the given name.
func (t Type) IsNamed(name string) bool {
	return (t.kind == KindPrimitive || t.kind == KindClass) && t.name == name && t.wrapper == WrapNone
}

func (t Type) WithConstant(c Constant) Type {
	t.constant = c
	return t
}

func (t Type) WithoutConstant() Type {
	t.constant = Constant{}
	return t
}

func (t Type) WithSpecifics(specifics ...Type) Type {
	t.specifics = cloneTypes(specifics)
	return t
}

func (t Type) WithBindings(b Bindings) Type {
	t.bindings = append(Bindings(nil), b...)
	return t
}

func (t Type) WithRet(ret Type) Type {
	r := ret
	t.ret = &r
	return t
}

func (t Type) WithArgs(args []Arg) Type {
	t.args = append([]Arg(nil), args...)
	return t
}

// UnwrapNull returns the payload of Null<T>; other types are returned as is.
func (t Type) UnwrapNull() Type {
	for t.IsNull() {
		if len(t.specifics) == 0 {
			return Unknown()
		}
		t = t.specifics[0]
	}
	return t
}

// SameClass reports the same nominal declaration regardless of specifics.
func (t Type) SameClass(o Type) bool {
	if t.kind != o.kind || (t.kind != KindClass && t.kind != KindPrimitive) {
		return false
	}
	return t.decl == o.decl && t.wrapper == o.wrapper && t.name == o.name
}

// Equal compares structure; constants are ignored.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindUnknown, KindDynamic, KindVoid:
		return true
	case KindPrimitive, KindTypeParam:
		return t.name == o.name
	case KindClass:
		if !t.SameClass(o) || len(t.specifics) != len(o.specifics) {
			return false
		}
		for i := range t.specifics {
			if !t.specifics[i].Equal(o.specifics[i]) {
				return false
			}
		}
		return true
	case KindFunction:
		if len(t.args) != len(o.args) {
			return false
		}
		for i := range t.args {
			a, b := t.args[i], o.args[i]
			if a.Optional != b.Optional || a.Rest != b.Rest || !a.Type.Equal(b.Type) {
				return false
			}
		}
		return t.Ret().Equal(o.Ret())
	case KindEnumValue:
		return t.member == o.member && t.EnumType().Equal(o.EnumType())
	}
	return false
}

// String renders the type the way diagnostics print it.
func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	switch t.kind {
	case KindUnknown:
		b.WriteString("Unknown")
	case KindDynamic, KindVoid, KindPrimitive, KindTypeParam:
		b.WriteString(t.name)
	case KindClass:
		b.WriteString(t.name)
		if len(t.specifics) == 0 || t.isAnonymous() {
			return
		}
		b.WriteByte('<')
		for i, s := range t.specifics {
			if i > 0 {
				b.WriteString(", ")
			}
			s.write(b)
		}
		b.WriteByte('>')
	case KindFunction:
		b.WriteByte('(')
		for i, a := range t.args {
			if i > 0 {
				b.WriteString(", ")
			}
			switch {
			case a.Rest:
				b.WriteString("...")
			case a.Optional:
				b.WriteByte('?')
			}
			a.Type.write(b)
		}
		b.WriteString(") -> ")
		t.Ret().write(b)
	case KindEnumValue:
		t.EnumType().write(b)
	}
}
