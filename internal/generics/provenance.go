package generics

// Provenance records why a binding exists. Lower values win on lookup.
type Provenance uint8

const (
	FromArgument Provenance = iota
	FromClass
	FromMethod
	FromAssignHint
	FromOther
)

func (p Provenance) String() string {
	switch p {
	case FromArgument:
		return "argument"
	case FromClass:
		return "class"
	case FromMethod:
		return "method"
	case FromAssignHint:
		return "assign"
	case FromOther:
		return "other"
	}
	return "provenance?"
}
