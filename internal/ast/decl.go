package ast

import (
	"hxinfer/internal/source"
)

// DeclKind classifies top-level declarations.
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclEnum
	DeclAbstract
	DeclTypedef
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclEnum:
		return "enum"
	case DeclAbstract:
		return "abstract"
	case DeclTypedef:
		return "typedef"
	}
	return "decl?"
}

// Meta is one `@:name` annotation. Args keeps raw argument text.
type Meta struct {
	Name string // без префикса @:
	Span source.Span
	Args []string
}

// HasMeta reports whether name is among metas.
func HasMeta(metas []Meta, name string) bool {
	for _, m := range metas {
		if m.Name == name {
			return true
		}
	}
	return false
}

type Decl struct {
	Kind       DeclKind
	Name       string
	NameSpan   source.Span
	Span       source.Span
	File       FileID
	Meta       []Meta
	TypeParams []TypeParam
	Extends    []TypeID // class: at most one; interface: any number
	Implements []TypeID
	Underlying TypeID // abstract (T) / typedef = T
	From       []TypeID
	To         []TypeID
	Members    []MemberID
	Extern     bool
	Private    bool
	// EnumAbstract marks `enum abstract` and `@:enum abstract`.
	EnumAbstract bool
}

// MemberKind classifies declaration members.
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberEnumCtor
)

type Member struct {
	Kind       MemberKind
	Name       string
	NameSpan   source.Span
	Span       source.Span
	Decl       DeclID
	Meta       []Meta
	Static     bool
	Final      bool
	Inline     bool
	Override   bool
	Optional   bool   // `?x` в анонимной структуре или @:optional
	Type       TypeID // тип поля
	Init       NodeID // инициализатор поля
	TypeParams []TypeParam
	Params     []NodeID // KindParam, для методов и конструкторов enum
	Ret        TypeID
	Body       NodeID
}

// IsConstructor reports whether m is the `new` method.
func (m *Member) IsConstructor() bool {
	return m.Kind == MemberMethod && m.Name == "new"
}

type File struct {
	Source source.FileID
	Span   source.Span
	Decls  []DeclID
}
