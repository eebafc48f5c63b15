package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.hx", []byte("class A {}"), 0)
	id2 := fs.Add("test.hx", []byte("class B {}"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("./test.hx")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "class A {}" {
		t.Fatalf("old version lost: %q", got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.hx", []byte("var a = 1;\r\nvar b = a;\n"))
	f := fs.Get(id)
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected CRLF normalization flag")
	}

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{4, LineCol{1, 5}},
		{10, LineCol{1, 11}},
		{11, LineCol{2, 1}},
		{19, LineCol{2, 9}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: got %+v, want %+v", tc.off, start, tc.want)
		}
		if back := f.Offset(start); back != tc.off {
			t.Errorf("Offset(%+v) = %d, want %d", start, back, tc.off)
		}
	}
	if got := f.GetLine(2); got != "var b = a;" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if got := fs.Text(Span{File: id, Start: 4, End: 5}); got != "a" {
		t.Errorf("Text = %q", got)
	}
}

func TestNormalizeNFC(t *testing.T) {
	decomposed := []byte("var cafe\u0301 = 1;")
	out, flags := Normalize(decomposed)
	if flags&FileNormalizedNFC == 0 {
		t.Fatalf("expected NFC flag")
	}
	if string(out) != "var caf\u00e9 = 1;" {
		t.Fatalf("unexpected normalization: %q", out)
	}
	if _, flags := Normalize([]byte("\xEF\xBB\xBFclass A {}")); flags&FileHadBOM == 0 {
		t.Fatalf("expected BOM flag")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 5}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Fatalf("Cover = %v", got)
	}
	if !b.Within(a.Cover(b)) {
		t.Fatalf("expected nested span")
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 1}); got != a {
		t.Fatalf("cross-file cover must keep receiver, got %v", got)
	}
}
