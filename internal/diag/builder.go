package diag

import (
	"fmt"
	"slices"

	"hxinfer/internal/source"
)

// New builds a bare diagnostic. The same code may be reported with different
// severities (strictness flags demote or promote some of them), so the
// severity is always explicit.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func Errorf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevError, code, primary, fmt.Sprintf(format, args...))
}

func Warningf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevWarning, code, primary, fmt.Sprintf(format, args...))
}

// WithNote and WithFix clip before appending: a Diagnostic is a value and
// copies must not share a backing array.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Span: sp, Msg: msg})
	return d
}

// WithFix adds a suggestion; a fix whose title is already offered is dropped.
func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	for _, f := range d.Fixes {
		if f.Title == title {
			return d
		}
	}
	d.Fixes = append(slices.Clip(d.Fixes), Fix{Title: title, Edits: edits})
	return d
}

// WithReplacement is WithFix for the common single-edit case.
func (d Diagnostic) WithReplacement(title string, sp source.Span, text string) Diagnostic {
	return d.WithFix(title, FixEdit{Span: sp, NewText: text})
}
