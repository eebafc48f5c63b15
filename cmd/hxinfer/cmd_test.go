package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"hxinfer/internal/project"
	"hxinfer/internal/source"
	"hxinfer/internal/trace"
)

func TestReplSessionKeepsVariables(t *testing.T) {
	var s replSession
	ctx := context.Background()

	res, err := s.eval(ctx, "var xs = [1, 2]")
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.HasErrors() || res.Name != "xs" || res.Type != "Array<Int>" {
		t.Fatalf("var line: name=%q type=%q errors=%v", res.Name, res.Type, res.Bag.HasErrors())
	}

	res, err = s.eval(ctx, "xs[0]")
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "" || res.Type != "Int" {
		t.Fatalf("expression line: name=%q type=%q", res.Name, res.Type)
	}
	if len(s.stmts) != 1 {
		t.Fatalf("expressions must not be kept, stmts=%v", s.stmts)
	}
}

func TestReplSessionDropsFailedLines(t *testing.T) {
	var s replSession
	res, err := s.eval(context.Background(), `var n:Int = "text"`)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("expected an incompatible type error")
	}
	if len(s.stmts) != 0 {
		t.Fatalf("failed line was kept: %v", s.stmts)
	}
}

func TestReplSessionDeclarations(t *testing.T) {
	var s replSession
	ctx := context.Background()
	res, err := s.eval(ctx, "class P { public var n:Int = 1; public function new() {} }")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Decl || res.Bag.HasErrors() {
		t.Fatalf("declaration: decl=%v errors=%v", res.Decl, res.Bag.HasErrors())
	}
	res, err = s.eval(ctx, "new P().n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Type != "Int" {
		t.Fatalf("member of declared class: %q", res.Type)
	}
	s.reset()
	if len(s.decls) != 0 || len(s.stmts) != 0 {
		t.Fatal("reset kept state")
	}
}

func TestBracketDepth(t *testing.T) {
	cases := map[string]int{
		"f(1, 2)":           0,
		"function() {":      1,
		"[1, [2":            2,
		`"{" + '('`:         0,
		`"\"(" + x)`:        -1,
		"if (a) { b(); } }": -1,
	}
	for src, want := range cases {
		if got := bracketDepth(src); got != want {
			t.Errorf("bracketDepth(%q) = %d, want %d", src, got, want)
		}
	}
}

func TestParseLineCol(t *testing.T) {
	pos, err := parseLineCol("12:7")
	if err != nil {
		t.Fatal(err)
	}
	if pos != (source.LineCol{Line: 12, Col: 7}) {
		t.Fatalf("got %+v", pos)
	}
	for _, bad := range []string{"", "12", "0:1", "1:0", "a:b", "1:-2"} {
		if _, err := parseLineCol(bad); err == nil {
			t.Errorf("parseLineCol(%q) accepted", bad)
		}
	}
}

func checkFlagSets() (local, global *pflag.FlagSet) {
	local = pflag.NewFlagSet("check", pflag.ContinueOnError)
	local.Int("jobs", 0, "")
	local.Bool("warnings-as-errors", false, "")
	local.Bool("strict-guards", false, "")
	global = pflag.NewFlagSet("root", pflag.ContinueOnError)
	global.Int("max-diagnostics", 100, "")
	return local, global
}

func TestOverrideCheckConfig(t *testing.T) {
	fileCfg := project.CheckConfig{MaxDiagnostics: 20, Jobs: 3, StrictGuards: true}

	local, global := checkFlagSets()
	got, err := overrideCheckConfig(fileCfg, true, local, global)
	if err != nil {
		t.Fatal(err)
	}
	if got != fileCfg {
		t.Fatalf("untouched flags changed config: %+v", got)
	}

	local, global = checkFlagSets()
	if err := local.Parse([]string{"--jobs=8", "--strict-guards=false", "--warnings-as-errors"}); err != nil {
		t.Fatal(err)
	}
	if err := global.Parse([]string{"--max-diagnostics=5"}); err != nil {
		t.Fatal(err)
	}
	got, err = overrideCheckConfig(fileCfg, true, local, global)
	if err != nil {
		t.Fatal(err)
	}
	want := project.CheckConfig{MaxDiagnostics: 5, Jobs: 8, WarningsAsErrors: true}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	local, global = checkFlagSets()
	got, err = overrideCheckConfig(project.CheckConfig{}, false, local, global)
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxDiagnostics != 100 {
		t.Fatalf("flag default not applied without config: %+v", got)
	}

	local, global = checkFlagSets()
	_ = local.Parse([]string{"--jobs=-1"})
	if _, err := overrideCheckConfig(fileCfg, true, local, global); !errors.Is(err, project.ErrInvalidConfig) {
		t.Fatalf("negative jobs: %v", err)
	}
}

func TestTraceFlagsConfig(t *testing.T) {
	if _, ok, err := (traceFlags{level: "off", mode: "ring"}).config(); ok || err != nil {
		t.Fatalf("off without output: ok=%v err=%v", ok, err)
	}
	cfg, ok, err := (traceFlags{output: "-", level: "off", mode: "ring"}).config()
	if err != nil || !ok {
		t.Fatalf("output alone: ok=%v err=%v", ok, err)
	}
	if cfg.Level != trace.LevelPhase || cfg.Mode != trace.ModeStream {
		t.Fatalf("output alone: %+v", cfg)
	}
	cfg, ok, err = (traceFlags{level: "debug", mode: "ring", ringSize: 16}).config()
	if err != nil || !ok || cfg.Mode != trace.ModeRing || cfg.RingSize != 16 {
		t.Fatalf("ring: %+v ok=%v err=%v", cfg, ok, err)
	}
	if _, _, err := (traceFlags{level: "loud", mode: "ring"}).config(); err == nil {
		t.Fatal("bad level accepted")
	}
	if _, _, err := (traceFlags{level: "phase", mode: "tape"}).config(); err == nil {
		t.Fatal("bad mode accepted")
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("bad mode accepted")
	}
	if !shouldUseTUI(uiModeOn, 1, "json") || shouldUseTUI(uiModeOff, 10, "pretty") {
		t.Error("explicit modes ignored")
	}
	if shouldUseTUI(uiModeAuto, 1, "pretty") {
		t.Error("auto mode with one file")
	}
}

func TestInitProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	created, err := initProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("created %v", created)
	}
	cfg, err := project.LoadConfig(filepath.Join(dir, project.ConfigName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Check.MaxDiagnostics != 100 || !cfg.Check.CacheEnabled() {
		t.Fatalf("unexpected config %+v", cfg.Check)
	}
	if st, err := os.Stat(filepath.Join(dir, "src")); err != nil || !st.IsDir() {
		t.Fatalf("src dir: %v", err)
	}
	if _, err := initProject(dir); err == nil || !strings.Contains(err.Error(), "already initialized") {
		t.Fatalf("second init: %v", err)
	}
}

func TestWriteInferEntries(t *testing.T) {
	entries := []inferEntry{
		{Owner: "Main", Name: "xs", Kind: "var", Type: "Array<Int>", Line: 3, Col: 7},
		{Owner: "Main", Name: "run", Kind: "method", Type: "Void -> Void", Line: 2, Col: 11},
	}

	var text bytes.Buffer
	if err := writeInferEntries(&text, entries, "text"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(text.String(), "\n"), "\n")
	if len(lines) != 2 || strings.Join(strings.Fields(lines[0]), " ") != "3:7 var Main.xs Array<Int>" {
		t.Fatalf("text output:\n%s", text.String())
	}

	var out bytes.Buffer
	if err := writeInferEntries(&out, entries, "yaml"); err != nil {
		t.Fatal(err)
	}
	var back []inferEntry
	if err := yaml.Unmarshal(out.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0] != entries[0] {
		t.Fatalf("yaml output:\n%s", out.String())
	}
}
