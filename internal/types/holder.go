package types

import (
	"hxinfer/internal/ast"
)

// Holder wraps one evaluation result: the type (with its constant), the
// node that produced it, whether it came from an explicit type tag and
// whether the value it describes may be reassigned.
// Holders are values; every With* returns a copy.
type Holder struct {
	t         Type
	origin    ast.NodeID
	declared  bool
	immutable bool
}

func Hold(t Type) Holder { return Holder{t: t} }

func HoldAt(t Type, origin ast.NodeID) Holder { return Holder{t: t, origin: origin} }

// Declared builds a holder for a type read from a type tag.
func Declared(t Type) Holder { return Holder{t: t, declared: true} }

func UnknownHolder() Holder { return Holder{} }

func (h Holder) Type() Type         { return h.t }
func (h Holder) Origin() ast.NodeID { return h.origin }
func (h Holder) IsDeclared() bool   { return h.declared }
func (h Holder) IsImmutable() bool  { return h.immutable }
func (h Holder) Constant() Constant { return h.t.constant }
func (h Holder) HasConstant() bool  { return h.t.constant.IsSet() }
func (h Holder) IsUnknown() bool    { return h.t.IsUnknown() }
func (h Holder) IsDynamic() bool    { return h.t.IsDynamic() }
func (h Holder) String() string     { return h.t.String() }

func (h Holder) WithType(t Type) Holder {
	h.t = t
	return h
}

func (h Holder) WithOrigin(origin ast.NodeID) Holder {
	h.origin = origin
	return h
}

func (h Holder) AsDeclared() Holder {
	h.declared = true
	return h
}

// AsImmutable marks a `final` binding or field.
func (h Holder) AsImmutable() Holder { return h.WithImmutable(true) }

func (h Holder) WithImmutable(v bool) Holder {
	h.immutable = v
	return h
}

func (h Holder) WithConstant(c Constant) Holder {
	h.t = h.t.WithConstant(c)
	return h
}

func (h Holder) WithoutConstant() Holder {
	h.t = h.t.WithoutConstant()
	return h
}
