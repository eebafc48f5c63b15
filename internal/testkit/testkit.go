// Package testkit builds small programs for package tests: parse a snippet,
// build the declaration table and locate nodes by name or marker.
package testkit

import (
	"strings"
	"testing"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/parser"
	"hxinfer/internal/source"
	"hxinfer/internal/symbols"
	"hxinfer/internal/types"
)

// Marker placed right before an expression selects it in Env.Marked.
const Marker = "/*@*/"

// Env is one parsed and indexed program.
type Env struct {
	FS    *source.FileSet
	B     *ast.Builder
	Tab   *symbols.Table
	Model *types.Model
	Bag   *diag.Bag
	File  ast.FileID
	Src   source.FileID
}

// Load parses src and fails the test on any parse or table diagnostic.
func Load(t testing.TB, src string) *Env {
	t.Helper()
	env := LoadLenient(src)
	for _, d := range env.Bag.Items() {
		t.Fatalf("unexpected diagnostic %s: %s", d.Code, d.Message)
	}
	return env
}

// LoadLenient parses src keeping diagnostics in Bag.
func LoadLenient(src string) *Env {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{})
	id := fs.AddVirtual("test.hx", []byte(src))
	res := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: rep})
	tab := symbols.Build(fs, b, []ast.FileID{res.File}, symbols.Options{Reporter: rep})
	return &Env{
		FS:    fs,
		B:     b,
		Tab:   tab,
		Model: types.NewModel(tab),
		Bag:   bag,
		File:  res.File,
		Src:   id,
	}
}

// Snippet wraps statements into a method body of class Test.
func Snippet(body string) string {
	return "class Test {\n\tfunction run() {\n" + body + "\n\t}\n}\n"
}

// Type instantiates a declaration by name without specifics.
func (e *Env) Type(t testing.TB, name string) types.Type {
	t.Helper()
	id, ok := e.Tab.LookupType(name)
	if !ok {
		t.Fatalf("type %s not found", name)
	}
	return e.Model.Instance(id)
}

// Member finds a member of decl, inherited ones included.
func (e *Env) Member(t testing.TB, decl, name string) ast.MemberID {
	t.Helper()
	d, ok := e.Tab.LookupType(decl)
	if !ok {
		t.Fatalf("type %s not found", decl)
	}
	id, ok := e.Tab.FindMember(d, name)
	if !ok {
		t.Fatalf("member %s.%s not found", decl, name)
	}
	return id
}

// Var returns the first local `var name` of the user file.
func (e *Env) Var(t testing.TB, name string) ast.NodeID {
	t.Helper()
	nodes := e.B.Nodes
	for i := uint32(1); i <= nodes.Arena.Len(); i++ {
		id := ast.NodeID(i)
		if nodes.Get(id).Span.File != e.Src {
			continue
		}
		if v, ok := nodes.Var(id); ok && v.Name == name {
			return id
		}
	}
	t.Fatalf("var %s not found", name)
	return ast.NoNodeID
}

// Marked returns the widest node starting right after the n-th marker
// (0-based).
func (e *Env) Marked(t testing.TB, n int) ast.NodeID {
	t.Helper()
	text := string(e.FS.Get(e.Src).Content)
	off := -1
	for i, from := 0, 0; i <= n; i++ {
		idx := strings.Index(text[from:], Marker)
		if idx < 0 {
			t.Fatalf("marker %d not found", n)
		}
		off = from + idx + len(Marker)
		from = off
	}
	nodes := e.B.Nodes
	best := ast.NoNodeID
	var bestEnd uint32
	for i := uint32(1); i <= nodes.Arena.Len(); i++ {
		id := ast.NodeID(i)
		node := nodes.Get(id)
		if node.Span.File != e.Src || int(node.Span.Start) != off {
			continue
		}
		if !best.IsValid() || node.Span.End > bestEnd {
			best, bestEnd = id, node.Span.End
		}
	}
	if !best.IsValid() {
		t.Fatalf("no node at marker %d", n)
	}
	return best
}

// Codes lists diagnostic codes in report order.
func (e *Env) Codes() []diag.Code {
	items := e.Bag.Items()
	out := make([]diag.Code, len(items))
	for i, d := range items {
		out[i] = d.Code
	}
	return out
}
