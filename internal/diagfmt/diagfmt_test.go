package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"hxinfer/internal/diag"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

// sample: one file with an incompatible tag on line 2.
func sample(t *testing.T, path string) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	content := "class A {\n\tvar s:String = 1;\n}\n"
	id := fs.AddVirtual(path, []byte(content))
	tagStart := uint32(strings.Index(content, "String"))
	initStart := uint32(strings.Index(content, "1;"))

	bag := diag.NewBag(0)
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.SemaIncompatibleType,
		source.Span{File: id, Start: initStart, End: initStart + 1},
		"Incompatible types: Int should be String").
		WithNote(source.Span{File: id, Start: tagStart, End: tagStart + 6}, "declared here").
		WithFix("Change type tag to Int", diag.FixEdit{
			Span:    source.Span{File: id, Start: tagStart, End: tagStart + 6},
			NewText: "Int",
		}).
		Emit()
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.IOLoadFileError, Message: "failed to load file: Missing.hx"})
	return fs, bag
}

func TestPretty(t *testing.T) {
	fs, bag := sample(t, "src/A.hx")
	var buf bytes.Buffer
	err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true, ShowPreview: true})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"src/A.hx:2:17: ERROR SEM3001: Incompatible types: Int should be String",
		"  2 |     var s:String = 1;\n",
		"    |" + strings.Repeat(" ", 20) + "^\n",
		"  note: src/A.hx:2:8: declared here",
		"  fix: Change type tag to Int",
		"    -     var s:String = 1;",
		"    +     var s:Int = 1;",
		"ERROR IO4001: failed to load file: Missing.hx",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colors must be off")
	}
}

func TestPrettyContextAndWideCaret(t *testing.T) {
	fs := source.NewFileSet()
	content := "// ok\nvar s = \"héllo\" + 1;\n// end\n"
	id := fs.AddVirtual("w.hx", []byte(content))
	start := uint32(strings.Index(content, "\"h"))
	end := start + uint32(len("\"héllo\""))
	bag := diag.NewBag(0)
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.SemaInfo, Primary: source.Span{File: id, Start: start, End: end}})

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"1 | // ok", "2 | var s", "3 | // end", "  |" + strings.Repeat(" ", 9) + "^~~~~~~\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestShort(t *testing.T) {
	fs, bag := sample(t, "/work/proj/src/A.hx")
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, PathModeRelative, "/work/proj"); err != nil {
		t.Fatal(err)
	}
	want := "src/A.hx:2:17: error SEM3001: Incompatible types: Int should be String\n" +
		"error IO4001: failed to load file: Missing.hx\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestJSON(t *testing.T) {
	fs, bag := sample(t, "A.hx")
	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, IncludeFixes: true, Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count=%d dropped=%d", out.Count, out.Dropped)
	}
	d := out.Diagnostics[0]
	if d.Severity != "error" || d.Code != "SEM3001" || d.Location == nil || d.Location.StartLine != 2 {
		t.Errorf("diagnostic = %+v", d)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 || d.Fixes[0].Edits[0].OldText != "String" {
		t.Errorf("fixes = %+v", d.Fixes)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location == nil {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestDisplayPath(t *testing.T) {
	long := "/very/long/absolute/path/to/some/nested/directory/file.hx"
	cases := []struct {
		path string
		mode PathMode
		base string
		want string
	}{
		{"A.hx", PathModeAuto, "", "A.hx"},
		{long, PathModeAuto, "", "file.hx"},
		{"/p/src/A.hx", PathModeAuto, "/p", "src/A.hx"},
		{"/q/A.hx", PathModeRelative, "/p", "/q/A.hx"},
		{"/p/src/A.hx", PathModeBasename, "", "A.hx"},
	}
	for _, tc := range cases {
		if got := displayPath(tc.path, tc.mode, tc.base); got != tc.want {
			t.Errorf("displayPath(%q, %d, %q) = %q, want %q", tc.path, tc.mode, tc.base, got, tc.want)
		}
	}
}

func TestTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.hx", []byte("var"))
	toks := []token.Token{
		{Kind: token.KwVar, Span: source.Span{File: id, Start: 0, End: 3}, Text: "var"},
		{Kind: token.EOF, Span: source.Span{File: id, Start: 3, End: 3}},
	}
	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"var" at 1:1-1:4`) {
		t.Errorf("pretty tokens:\n%s", buf.String())
	}
	buf.Reset()
	if err := FormatTokensJSON(&buf, toks); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil || len(out) != 2 {
		t.Errorf("json tokens = %v, %v", out, err)
	}
}
