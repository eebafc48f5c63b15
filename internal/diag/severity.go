package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational hints such as unreachable code.
	SevInfo Severity = iota
	// SevWeakWarning is for style-level findings that tools may render faintly.
	SevWeakWarning
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWeakWarning:
		return "WEAK_WARNING"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lower-case form used by short and JSON output.
func (s Severity) Label() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevWeakWarning:
		return "weak_warning"
	default:
		return "info"
	}
}

// ParseSeverity is the inverse of Label.
func ParseSeverity(label string) (Severity, bool) {
	switch label {
	case "error":
		return SevError, true
	case "warning":
		return SevWarning, true
	case "weak_warning":
		return SevWeakWarning, true
	case "info":
		return SevInfo, true
	}
	return SevInfo, false
}
