package ast

import (
	"strings"

	"hxinfer/internal/source"
)

// TypeKind classifies type expressions written in source.
type TypeKind uint8

const (
	TypePath TypeKind = iota // Name<Args>
	TypeFunc                 // A->B, (a:A)->B
	TypeAnon                 // { x:Int, ?y:Int }
)

type FuncTypeParam struct {
	Name     string
	Type     TypeID
	Optional bool
}

type AnonField struct {
	Name     string
	NameSpan source.Span
	Type     TypeID
	Optional bool
	Method   bool // `function f():T;` inside the structure
	Final    bool
}

// TypeExpr is one node of a written type. Only the fields of its Kind are set.
type TypeExpr struct {
	Kind   TypeKind
	Span   source.Span
	Name   string // TypePath: dotted name
	Args   []TypeID
	Params []FuncTypeParam // TypeFunc
	Ret    TypeID          // TypeFunc
	Fields []AnonField     // TypeAnon
}

// TypeParam is a declared generic parameter `T:Constraint`.
type TypeParam struct {
	Name        string
	Span        source.Span
	Constraints []TypeID
}

// Types manages type-expression nodes.
type Types struct {
	Arena *Arena[TypeExpr]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeExpr](capHint)}
}

func (t *Types) New(te TypeExpr) TypeID {
	return TypeID(t.Arena.Allocate(te))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

// String renders a type expression in canonical Haxe spelling.
func (t *Types) String(id TypeID) string {
	var b strings.Builder
	t.write(&b, id)
	return b.String()
}

func (t *Types) write(b *strings.Builder, id TypeID) {
	te := t.Get(id)
	if te == nil {
		b.WriteString("?")
		return
	}
	switch te.Kind {
	case TypePath:
		b.WriteString(te.Name)
		if len(te.Args) > 0 {
			b.WriteByte('<')
			for i, a := range te.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				t.write(b, a)
			}
			b.WriteByte('>')
		}
	case TypeFunc:
		b.WriteByte('(')
		for i, p := range te.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			if p.Optional {
				b.WriteByte('?')
			}
			if p.Name != "" {
				b.WriteString(p.Name)
				b.WriteByte(':')
			}
			t.write(b, p.Type)
		}
		b.WriteString(") -> ")
		t.write(b, te.Ret)
	case TypeAnon:
		b.WriteString("{ ")
		for i, f := range te.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteString(f.Name)
			b.WriteString(" : ")
			t.write(b, f.Type)
		}
		b.WriteString(" }")
	}
}
