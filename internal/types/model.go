package types

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/symbols"
)

// maxFollow bounds typedef/Null unwrapping of self-referencing aliases.
const maxFollow = 32

// Model connects type values to a declaration table.
type Model struct {
	Tab  *symbols.Table
	core map[string]ast.DeclID
}

var coreNames = []string{
	NameInt, NameFloat, NameBool, NameString, "Void", "Dynamic", "Any",
	"Array", "Map", "Null", "Class", "Enum", "EnumValue", "Iterator",
	"KeyValueIterator", "IntIterator", "EReg", "Function",
}

func NewModel(tab *symbols.Table) *Model {
	m := &Model{Tab: tab, core: make(map[string]ast.DeclID, len(coreNames))}
	for _, name := range coreNames {
		if id, ok := tab.LookupType(name); ok {
			m.core[name] = id
		}
	}
	return m
}

// Core returns the declaration of a prelude type.
func (m *Model) Core(name string) ast.DeclID { return m.core[name] }

func (m *Model) Int() Type        { return Primitive(NameInt, m.core[NameInt]) }
func (m *Model) Float() Type      { return Primitive(NameFloat, m.core[NameFloat]) }
func (m *Model) Bool() Type       { return Primitive(NameBool, m.core[NameBool]) }
func (m *Model) StringType() Type { return Primitive(NameString, m.core[NameString]) }

func (m *Model) Array(elem Type) Type { return Instance(m.core["Array"], "Array", elem) }

func (m *Model) Map(key, value Type) Type { return Instance(m.core["Map"], "Map", key, value) }

func (m *Model) Iterator(elem Type) Type { return Instance(m.core["Iterator"], "Iterator", elem) }

func (m *Model) IntIterator() Type { return Instance(m.core["IntIterator"], "IntIterator") }

func (m *Model) EReg() Type { return Instance(m.core["EReg"], "EReg") }

// WrapInNull returns Null<t>; Null<Null<T>> collapses.
func (m *Model) WrapInNull(t Type) Type {
	if t.IsNull() {
		return t
	}
	return Wrapped(m.core["Null"], "Null", WrapNull, t)
}

// ClassOf returns Class<t>, the type of a class name used as a value.
func (m *Model) ClassOf(t Type) Type { return Wrapped(m.core["Class"], "Class", WrapClass, t) }

// EnumOf returns Enum<t>, the type of an enum name used as a value.
func (m *Model) EnumOf(t Type) Type { return Wrapped(m.core["Enum"], "Enum", WrapEnum, t) }

// Instance instantiates decl. Core declarations map onto their dedicated
// shapes (primitives, Void, Dynamic, wrappers).
func (m *Model) Instance(decl ast.DeclID, specifics ...Type) Type {
	d := m.Tab.Decl(decl)
	if d == nil {
		return Unknown()
	}
	info := m.Tab.Info(decl)
	if info.Has(symbols.FlagPrelude) {
		first := Unknown()
		if len(specifics) > 0 {
			first = specifics[0]
		}
		switch d.Name {
		case NameInt, NameFloat, NameBool, NameString:
			return Primitive(d.Name, decl)
		case "Void":
			return Void()
		case "Dynamic":
			return Dynamic()
		case "Null":
			return m.WrapInNull(first)
		case "Class":
			return m.ClassOf(first)
		case "Enum":
			return m.EnumOf(first)
		}
	}
	name := d.Name
	if info.Has(symbols.FlagAnonymous) && info.Type.IsValid() {
		name = m.Tab.B.Types.String(info.Type)
	}
	return Instance(decl, name, specifics...)
}

// DeclaredInstance instantiates decl with its own parameters as specifics,
// e.g. Box<T> inside Box.
func (m *Model) DeclaredInstance(decl ast.DeclID) Type {
	d := m.Tab.Decl(decl)
	if d == nil {
		return Unknown()
	}
	specs := make([]Type, len(d.TypeParams))
	for i, tp := range d.TypeParams {
		specs[i] = TypeParam(tp.Name)
	}
	return m.Instance(decl, specs...)
}

// ObjectInstance is the type of an object literal; name is its rendering.
func (m *Model) ObjectInstance(decl ast.DeclID, name string) Type {
	return Instance(decl, name)
}

// Params lists generic names visible to a type tag. Open treats every
// unresolved single name as a parameter; structure members use it since
// they may sit inside any generic context.
type Params struct {
	Names []string
	Open  bool
}

func (p Params) has(name string) bool {
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}

// FromTag converts a written type into a type value. Unresolvable names
// become Unknown.
func (m *Model) FromTag(tid ast.TypeID, params Params) Type {
	te := m.Tab.B.Types.Get(tid)
	if te == nil {
		return Unknown()
	}
	switch te.Kind {
	case ast.TypeFunc:
		args := make([]Arg, len(te.Params))
		for i, p := range te.Params {
			args[i] = Arg{Name: p.Name, Type: m.FromTag(p.Type, params), Optional: p.Optional}
		}
		return Function(args, m.FromTag(te.Ret, params), ast.NoMemberID)
	case ast.TypeAnon:
		decl, ok := m.Tab.AnonDecl(tid)
		if !ok {
			return Unknown()
		}
		return m.Instance(decl)
	}
	if params.has(te.Name) {
		return TypeParam(te.Name)
	}
	switch te.Name {
	case "Void":
		return Void()
	case "Dynamic":
		return Dynamic()
	}
	decl, ok := m.Tab.LookupType(te.Name)
	if !ok {
		if params.Open {
			return TypeParam(te.Name)
		}
		return Unknown()
	}
	specs := make([]Type, len(te.Args))
	for i, a := range te.Args {
		specs[i] = m.FromTag(a, params)
	}
	return m.Instance(decl, specs...)
}

// TypeParamNames returns the generic parameter names of decl.
func (m *Model) TypeParamNames(decl ast.DeclID) []string {
	d := m.Tab.Decl(decl)
	if d == nil {
		return nil
	}
	out := make([]string, len(d.TypeParams))
	for i, tp := range d.TypeParams {
		out[i] = tp.Name
	}
	return out
}

// MemberParams returns the tag scope of a member.
func (m *Model) MemberParams(member ast.MemberID) Params {
	p := Params{Names: m.Tab.TypeParamNames(member)}
	if mm := m.Tab.Member(member); mm != nil {
		p.Open = m.Tab.Info(mm.Decl).Has(symbols.FlagAnonymous)
	}
	return p
}

// BindingsOf binds the declaration parameters of a class instance to its
// specifics; anonymous instances contribute their generic context.
func (m *Model) BindingsOf(t Type) Bindings {
	if t.kind != KindClass && t.kind != KindPrimitive {
		return nil
	}
	b := Zip(m.TypeParamNames(t.decl), t.specifics)
	if len(t.bindings) > 0 {
		b = append(b, t.bindings...)
	}
	return b
}

// Follow unwraps Null<T> and typedefs until neither applies.
func (m *Model) Follow(t Type) Type {
	for range maxFollow {
		u := t.UnwrapNull()
		if !m.IsTypedef(u) {
			return u
		}
		t = m.followTypedef(u)
	}
	return t
}

// FollowTypedef resolves typedef aliases, keeping Null wrappers.
func (m *Model) FollowTypedef(t Type) Type {
	for range maxFollow {
		if !m.IsTypedef(t) {
			return t
		}
		t = m.followTypedef(t)
	}
	return t
}

func (m *Model) followTypedef(t Type) Type {
	d := m.Tab.Decl(t.decl)
	under := m.FromTag(d.Underlying, Params{Names: m.TypeParamNames(t.decl)})
	return Substitute(under, m.BindingsOf(t)).WithConstant(t.constant)
}

// Underlying returns the underlying type of an abstract instance.
func (m *Model) Underlying(t Type) (Type, bool) {
	if !m.IsAbstract(t) {
		return Unknown(), false
	}
	d := m.Tab.Decl(t.decl)
	if !d.Underlying.IsValid() {
		return Unknown(), false
	}
	under := m.FromTag(d.Underlying, Params{Names: m.TypeParamNames(t.decl)})
	return Substitute(under, m.BindingsOf(t)), true
}

func (m *Model) declKind(t Type) (ast.DeclKind, bool) {
	if t.kind != KindClass || t.wrapper != WrapNone {
		return 0, false
	}
	d := m.Tab.Decl(t.decl)
	if d == nil {
		return 0, false
	}
	return d.Kind, true
}

func (m *Model) IsTypedef(t Type) bool {
	k, ok := m.declKind(t)
	return ok && k == ast.DeclTypedef
}

func (m *Model) IsEnum(t Type) bool {
	k, ok := m.declKind(t)
	return ok && k == ast.DeclEnum
}

func (m *Model) IsInterface(t Type) bool {
	k, ok := m.declKind(t)
	return ok && k == ast.DeclInterface
}

func (m *Model) IsAbstract(t Type) bool {
	k, ok := m.declKind(t)
	return ok && k == ast.DeclAbstract
}

// IsEnumAbstract reports `enum abstract` / `@:enum abstract` instances.
func (m *Model) IsEnumAbstract(t Type) bool {
	return m.IsAbstract(t) && m.Tab.Decl(t.decl).EnumAbstract
}

func (m *Model) IsStructInit(t Type) bool {
	return t.kind == KindClass && m.Tab.Info(t.decl).Has(symbols.FlagStructInit)
}

func (m *Model) IsAnonymous(t Type) bool {
	return t.kind == KindClass && t.wrapper == WrapNone && m.Tab.Info(t.decl).Has(symbols.FlagAnonymous)
}

func (m *Model) IsObjectLiteral(t Type) bool {
	return t.kind == KindClass && m.Tab.Info(t.decl).Has(symbols.FlagObjectLiteral)
}

// IsAny reports the Any type; EnumValue and Function are the other core
// names with special compatibility rules.
func (m *Model) IsAny(t Type) bool { return t.IsNamed("Any") && t.decl == m.core["Any"] }

func (m *Model) IsEnumValueClass(t Type) bool {
	return t.IsNamed("EnumValue") && t.decl == m.core["EnumValue"]
}

func (m *Model) IsFunctionClass(t Type) bool {
	return t.IsNamed("Function") && t.decl == m.core["Function"]
}

func (m *Model) IsArray(t Type) bool {
	return t.kind == KindClass && t.wrapper == WrapNone && t.decl == m.core["Array"]
}

func (m *Model) IsMap(t Type) bool {
	return t.kind == KindClass && t.wrapper == WrapNone && t.decl == m.core["Map"]
}

// SuperTypes returns the instantiated `extends` and `implements` types of a
// class instance, e.g. Base<Int> for `class A extends Base<Int>`.
func (m *Model) SuperTypes(t Type) []Type {
	d := m.Tab.Decl(t.decl)
	if t.kind != KindClass || d == nil || d.Kind == ast.DeclAbstract {
		return nil
	}
	params := Params{Names: m.TypeParamNames(t.decl)}
	b := m.BindingsOf(t)
	out := make([]Type, 0, len(d.Extends)+len(d.Implements))
	for _, tag := range append(append([]ast.TypeID(nil), d.Extends...), d.Implements...) {
		st := Substitute(m.FromTag(tag, params), b)
		if st.kind == KindClass {
			out = append(out, st)
		}
	}
	return out
}

// AsSuper walks the hierarchy of t looking for an instance of decl, so that
// Child (extends Base<Int>) seen as Base yields Base<Int>.
func (m *Model) AsSuper(t Type, decl ast.DeclID) (Type, bool) {
	visited := map[ast.DeclID]struct{}{}
	queue := []Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.decl == decl {
			return cur, true
		}
		if _, ok := visited[cur.decl]; ok {
			continue
		}
		visited[cur.decl] = struct{}{}
		queue = append(queue, m.SuperTypes(cur)...)
	}
	return Unknown(), false
}
