package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"hxinfer/internal/diag"
	"hxinfer/internal/observ"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

const libSrc = `class A {
	public static function f():Int { return 1; }
}
`

const useSrc = `class B {
	static function run() {
		var s:String = A.f();
		if (true) trace(s);
	}
}
`

func writeProgram(t *testing.T, files map[string]string) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func codes(bag *diag.Bag) map[diag.Code]diag.Severity {
	out := map[diag.Code]diag.Severity{}
	for _, d := range bag.Items() {
		out[d.Code] = d.Severity
	}
	return out
}

func TestCheckAcrossFiles(t *testing.T) {
	_, paths := writeProgram(t, map[string]string{"A.hx": libSrc, "B.hx": useSrc})
	var mu sync.Mutex
	var events []ProgressEvent
	res, err := Check(context.Background(), paths, Options{
		Jobs:  2,
		Timer: observ.NewTimer(),
		Progress: func(ev ProgressEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.HasErrors() {
		t.Fatalf("expected errors, got %v", res.Bag.Items())
	}
	for _, f := range res.Files {
		got := codes(f.Bag)
		switch filepath.Base(f.Path) {
		case "A.hx":
			if len(got) != 0 {
				t.Errorf("A.hx: unexpected %v", got)
			}
		case "B.hx":
			if got[diag.SemaIncompatibleType] != diag.SevError {
				t.Errorf("B.hx: want incompatible type error, got %v", got)
			}
			if got[diag.SemaConstantGuard] != diag.SevWarning {
				t.Errorf("B.hx: want constant guard warning, got %v", got)
			}
		}
	}
	checked := 0
	for _, ev := range events {
		if ev.Phase == "check" && ev.Status == ProgressDone {
			checked++
		}
	}
	if checked != 2 {
		t.Errorf("check events = %d, want 2", checked)
	}
}

func TestCheckPromotions(t *testing.T) {
	_, paths := writeProgram(t, map[string]string{"A.hx": libSrc, "B.hx": useSrc})

	res, err := Check(context.Background(), paths, Options{StrictGuards: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Bag); got[diag.SemaConstantGuard] != diag.SevError {
		t.Errorf("strict guards: %v", got)
	}

	res, err = Check(context.Background(), paths, Options{WarningsAsErrors: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.CountAtLeast(diag.SevWarning) != res.Bag.CountAtLeast(diag.SevError) {
		t.Errorf("warnings left after promotion: %v", res.Bag.Items())
	}
}

func TestCheckMissingFile(t *testing.T) {
	dir, paths := writeProgram(t, map[string]string{"A.hx": libSrc})
	paths = append(paths, filepath.Join(dir, "Missing.hx"))
	res, err := Check(context.Background(), paths, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Files[1].Bag); got[diag.IOLoadFileError] != diag.SevError {
		t.Errorf("missing file: %v", got)
	}
	if got := codes(res.Files[0].Bag); len(got) != 0 {
		t.Errorf("loaded file: %v", got)
	}
}

func TestCheckUsesDiskCache(t *testing.T) {
	_, paths := writeProgram(t, map[string]string{"A.hx": libSrc, "B.hx": useSrc})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	first, err := Check(context.Background(), paths, Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Check(context.Background(), paths, Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range second.Files {
		if !f.Cached {
			t.Errorf("%s was checked again", f.Path)
		}
		a, b := first.Files[i].Bag.Items(), f.Bag.Items()
		if len(a) != len(b) {
			t.Fatalf("%s: %d cached diagnostics, want %d", f.Path, len(b), len(a))
		}
		for j := range a {
			if a[j].Code != b[j].Code || a[j].Message != b[j].Message || a[j].Primary != b[j].Primary {
				t.Errorf("%s: cached %+v, want %+v", f.Path, b[j], a[j])
			}
		}
	}

	third, err := Check(context.Background(), paths, Options{Cache: cache, StrictGuards: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range third.Files {
		if f.Cached {
			t.Errorf("%s: settings change must invalidate the cache", f.Path)
		}
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	var payload DiskPayload
	if ok, err := cache.Get(programDigest(third.Program, Options{}), &payload); ok || err != nil {
		t.Errorf("after DropAll: ok=%v err=%v", ok, err)
	}
}

func TestCheckCancelled(t *testing.T) {
	_, paths := writeProgram(t, map[string]string{"A.hx": libSrc})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Check(ctx, paths, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTokenizeFiles(t *testing.T) {
	dir, paths := writeProgram(t, map[string]string{"A.hx": libSrc})
	paths = append(paths, filepath.Join(dir, "Missing.hx"))
	_, results, err := TokenizeFiles(context.Background(), paths, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	toks := results[0].Tokens
	if len(toks) == 0 || toks[0].Kind != token.KwClass || toks[len(toks)-1].Kind != token.EOF {
		t.Errorf("tokens = %v", toks)
	}
	if results[1].Tokens != nil || !results[1].Bag.HasErrors() {
		t.Errorf("missing file must carry an error and no tokens")
	}
}

func TestInfer(t *testing.T) {
	src := "class T {\n\tstatic function run() {\n\t\tvar xs = [1, 2];\n\t\tvar first = xs[0];\n\t}\n}\n"
	res, err := Infer(context.Background(), "T.hx", []byte(src), BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, e := range res.Entries {
		got[e.Name] = e.Type.String()
	}
	if got["xs"] != "Array<Int>" || got["first"] != "Int" || got["run"] != "() -> Void" {
		t.Errorf("entries = %v", got)
	}

	h, sp, err := res.At(context.Background(), source.LineCol{Line: 4, Col: 15})
	if err != nil {
		t.Fatal(err)
	}
	if h.String() != "Array<Int>" || res.Program.FS.Text(sp) != "xs" {
		t.Errorf("At = %s over %q", h, res.Program.FS.Text(sp))
	}
	if _, _, err := res.At(context.Background(), source.LineCol{Line: 1, Col: 1}); !errors.Is(err, ErrNoExpression) {
		t.Errorf("err = %v, want ErrNoExpression", err)
	}
}

func TestAppendTimings(t *testing.T) {
	timer := observ.NewTimer()
	timer.End(timer.Begin("parse"), "")
	bag := diag.NewBag(1)
	bag.Add(diag.Diagnostic{Code: diag.SemaInfo})
	AppendTimings(bag, timer, 3)
	items := bag.Items()
	if len(items) != 2 || items[1].Code != diag.ObsTimings || len(items[1].Notes) != 1 {
		t.Fatalf("items = %+v", items)
	}
}
