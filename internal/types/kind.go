package types

// Kind tags the shape of a Type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDynamic
	KindVoid
	KindPrimitive
	KindClass
	KindFunction
	KindEnumValue
	KindTypeParam
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindDynamic:
		return "dynamic"
	case KindVoid:
		return "void"
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindEnumValue:
		return "enum-value"
	case KindTypeParam:
		return "type-param"
	}
	return "kind?"
}

// Wrapper marks synthetic wrappings of a class instance.
type Wrapper uint8

const (
	WrapNone Wrapper = iota
	WrapClass
	WrapEnum
	WrapNull
)

// Primitive names.
const (
	NameInt    = "Int"
	NameFloat  = "Float"
	NameBool   = "Bool"
	NameString = "String"
)

func isPrimitiveName(name string) bool {
	switch name {
	case NameInt, NameFloat, NameBool, NameString:
		return true
	}
	return false
}
