package diag

import (
	"testing"

	"hxinfer/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	user := fs.Add("testdata/sample.hx", []byte("a\nb\n"), 0)
	prelude := fs.Add("prelude.hx", []byte("x\n"), source.FilePrelude)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaConstantGuard,
			Message:  "If expression constant",
			Primary:  source.Span{File: user, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SemaIncompatibleType,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: user, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: prelude, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: user, Start: 2, End: 3}, Msg: "declared here"},
			},
		},
	}

	want := "error SEM3001 testdata/sample.hx:1:1 first line second\n" +
		"note SEM3001 testdata/sample.hx:2:1 declared here\n" +
		"warning SEM3007 testdata/sample.hx:2:1 If expression constant"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestBagLimitAndPromote(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	for i := 0; i < 3; i++ {
		ReportWarning(r, SemaConstantGuard, source.Span{Start: uint32(i)}, "w").Emit()
	}
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	if bag.HasErrors() {
		t.Fatalf("no errors expected yet")
	}
	bag.Promote()
	if !bag.HasErrors() {
		t.Fatalf("warnings must be promoted")
	}
}

func TestNilReporterBuilder(t *testing.T) {
	// must not panic
	ReportError(nil, SemaIncompatibleType, source.Span{}, "x").WithNode(3).WithFix("fix").Emit()
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := Errorf(SemaMissingMember, source.Span{Start: 1, End: 2}, "missing %s", "y")
	r.Report(d)
	r.Report(d)
	r.Report(d.WithNote(source.Span{}, "note does not matter"))
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	if got := SynUnexpectedToken.ID(); got != "SYN2001" {
		t.Fatalf("ID = %q", got)
	}
	if got := SemaMissingMember.Title(); got != "Missing structure member" {
		t.Fatalf("Title = %q", got)
	}
}

func TestDiagnosticBuilders(t *testing.T) {
	sp := source.Span{Start: 4, End: 7}
	w := Warningf(SemaIndexOutOfBounds, sp, "Index %d is out of bounds", 3)
	if w.Severity != SevWarning || w.Message != "Index 3 is out of bounds" {
		t.Fatalf("unexpected warning %+v", w)
	}

	base := Errorf(SemaIncompatibleType, sp, "Incompatible type")
	fixed := base.WithReplacement("Change type tag to Int", sp, "Int").
		WithReplacement("Change type tag to Int", sp, "Int").
		WithFix("Remove tag")
	if len(fixed.Fixes) != 2 {
		t.Fatalf("duplicate fix titles must collapse, got %d fixes", len(fixed.Fixes))
	}
	if e := fixed.Fixes[0].Edits; len(e) != 1 || e[0].NewText != "Int" || e[0].Span != sp {
		t.Fatalf("unexpected replacement %+v", e)
	}
	if len(base.Fixes) != 0 {
		t.Fatalf("builders must not modify the receiver")
	}

	a := base.WithNote(sp, "first")
	b := a.WithNote(sp, "second")
	c := a.WithNote(sp, "third")
	if len(a.Notes) != 1 || b.Notes[1].Msg != "second" || c.Notes[1].Msg != "third" {
		t.Fatalf("notes share storage: %+v / %+v", b.Notes, c.Notes)
	}
}
