package types

import (
	"hxinfer/internal/ast"
)

// ParamArgs converts KindParam nodes into function arguments using their
// tags; untagged parameters are Unknown.
func (m *Model) ParamArgs(params []ast.NodeID, scope Params) []Arg {
	nodes := m.Tab.B.Nodes
	args := make([]Arg, 0, len(params))
	for _, p := range params {
		d, ok := nodes.Param(p)
		if !ok {
			continue
		}
		a := Arg{Name: d.Name, Optional: d.Optional || d.Default.IsValid(), Rest: d.Rest}
		if d.Type.IsValid() {
			a.Type = m.FromTag(d.Type, scope)
		}
		args = append(args, a)
	}
	return args
}

// MemberTag types a member from its tags only: fields by their tag, methods
// by their signature, enum constructors by their parameters. Missing tags
// stay Unknown; the evaluator refines them from initializers and bodies.
func (m *Model) MemberTag(member ast.MemberID) Type {
	mm := m.Tab.Member(member)
	if mm == nil {
		return Unknown()
	}
	scope := m.MemberParams(member)
	switch mm.Kind {
	case ast.MemberField:
		if mm.Type.IsValid() {
			return m.FromTag(mm.Type, scope)
		}
		if m.Tab.IsEnumAbstractValue(member) {
			return m.DeclaredInstance(mm.Decl)
		}
		return Unknown()
	case ast.MemberMethod:
		if mm.Type.IsValid() {
			// метод анонимной структуры: тип записан целиком
			return m.FromTag(mm.Type, scope).withMember(member)
		}
		ret := Unknown()
		switch {
		case mm.Ret.IsValid():
			ret = m.FromTag(mm.Ret, scope)
		case mm.IsConstructor():
			ret = Void()
		}
		return Function(m.ParamArgs(mm.Params, scope), ret, member)
	case ast.MemberEnumCtor:
		return m.EnumCtor(member, m.DeclaredInstance(mm.Decl))
	}
	return Unknown()
}

func (t Type) withMember(member ast.MemberID) Type {
	if t.kind == KindFunction {
		t.member = member
	}
	return t
}

// EnumCtor types a constructor of enum: a value for argument-less
// constructors, a function returning the enum otherwise.
func (m *Model) EnumCtor(member ast.MemberID, enum Type) Type {
	mm := m.Tab.Member(member)
	if mm == nil {
		return Unknown()
	}
	b := m.BindingsOf(enum)
	if len(mm.Params) == 0 {
		return EnumValue(enum, member, mm.Name, b)
	}
	args := m.ParamArgs(mm.Params, m.MemberParams(member))
	for i := range args {
		args[i].Type = Substitute(args[i].Type, b)
	}
	return Function(args, enum, member)
}

// IsEnumCtorFunction reports a function synthesized for an enum constructor.
func (m *Model) IsEnumCtorFunction(t Type) bool {
	if t.kind != KindFunction {
		return false
	}
	mm := m.Tab.Member(t.member)
	return mm != nil && mm.Kind == ast.MemberEnumCtor
}
