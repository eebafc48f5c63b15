package project

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFindsConfigUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigName), `
[check]
max_diagnostics = 20
jobs = 2
warnings_as_errors = true
cache = false

[sources]
include = ["src"]
exclude = ["src/gen/**"]
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	p, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if p.Root != root {
		t.Errorf("root = %q, want %q", p.Root, root)
	}
	c := p.Config.Check
	if c.MaxDiagnostics != 20 || c.JobsOrDefault() != 2 || !c.WarningsAsErrors || c.CacheEnabled() {
		t.Errorf("check = %+v", c)
	}
}

func TestLoadWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	p, ok, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Skip("a parent directory of the temp dir has " + ConfigName)
	}
	if !p.Config.Check.CacheEnabled() || p.Config.Check.JobsOrDefault() < 1 {
		t.Errorf("defaults = %+v", p.Config.Check)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key": "[check]\ncolour = true\n",
		"negative":    "[check]\njobs = -1\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), ConfigName)
		writeFile(t, path, content)
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", name, err)
		}
	}
	path := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, path, "[check\n")
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("broken TOML must fail")
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	data, err := Encode(Default())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), ConfigName)
	writeFile(t, path, string(data))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("default config does not load back: %v\n%s", err, data)
	}
	if cfg.Check.MaxDiagnostics != 100 || !slices.Equal(cfg.Sources.Include, []string{"src"}) {
		t.Errorf("round trip = %+v", cfg)
	}
}

func TestSources(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"src/Main.hx", "src/util/Str.hx", "src/util/notes.txt", "src/gen/Out.hx", "other/X.hx"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(f)), "")
	}
	p := &Project{Root: root, Config: Config{Sources: SourcesConfig{
		Include: []string{"src"},
		Exclude: []string{"src/gen/**"},
	}}}
	got, err := p.Sources(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "src", "Main.hx"),
		filepath.Join(root, "src", "util", "Str.hx"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}

	explicit := filepath.Join(root, "src", "util", "notes.txt")
	got, err = p.Sources([]string{explicit, explicit})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{explicit}) {
		t.Errorf("explicit file = %v", got)
	}
}

func TestMatchPath(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"src/gen/**", "src/gen/a/b.hx", true},
		{"src/gen/**", "src/gen", true},
		{"**/_*", "src/_tmp", true},
		{"**/_*", "src/tmp", false},
		{"*.hx", "a/b.hx", false},
		{"a/*.hx", "a/b.hx", true},
	}
	for _, tc := range cases {
		if got := MatchPath(tc.pattern, tc.path); got != tc.want {
			t.Errorf("MatchPath(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}

func TestFingerprintTracksSettings(t *testing.T) {
	a := CheckConfig{}.Fingerprint()
	b := CheckConfig{StrictGuards: true}.Fingerprint()
	if a == b {
		t.Errorf("strict_guards must change the fingerprint")
	}
	if Combine(a, b) == Combine(b, a) {
		t.Errorf("Combine must be order sensitive")
	}
}
