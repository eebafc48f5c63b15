package eval

import (
	"context"
	"slices"

	"hxinfer/internal/ast"
	"hxinfer/internal/source"
	"hxinfer/internal/types"
)

type EntryKind uint8

const (
	EntryField EntryKind = iota
	EntryMethod
	EntryCtor
	EntryVar
)

func (k EntryKind) String() string {
	switch k {
	case EntryField:
		return "field"
	case EntryMethod:
		return "method"
	case EntryCtor:
		return "ctor"
	case EntryVar:
		return "var"
	}
	return "entry?"
}

// Entry is one named thing of a file with its inferred type.
type Entry struct {
	Owner string // declaration name
	Name  string
	Kind  EntryKind
	Span  source.Span
	Type  types.Type
	// Tagged is set when the source spells the type out.
	Tagged bool
}

// Inventory types every member of file and every local variable declared
// in member bodies, in source order.
func (e *Evaluator) Inventory(ctx context.Context, file ast.FileID) []Entry {
	f := e.tab.B.File(file)
	if f == nil {
		return nil
	}
	var out []Entry
	for _, decl := range f.Decls {
		d := e.tab.Decl(decl)
		self := e.model.DeclaredInstance(decl)
		for _, m := range d.Members {
			if ctx.Err() != nil {
				return out
			}
			mm := e.tab.Member(m)
			q := e.newQuery(ctx, nil)
			out = append(out, Entry{
				Owner:  d.Name,
				Name:   mm.Name,
				Kind:   memberEntryKind(mm),
				Span:   mm.NameSpan,
				Type:   q.MemberType(m, self).Type(),
				Tagged: mm.Type.IsValid(),
			})
			q.onVar = func(id ast.NodeID, h types.Holder) {
				v, _ := e.nodes.Var(id)
				out = append(out, Entry{
					Owner:  d.Name,
					Name:   v.Name,
					Kind:   EntryVar,
					Span:   v.NameSpan,
					Type:   h.Type(),
					Tagged: v.Type.IsValid(),
				})
			}
			if mm.Kind == ast.MemberMethod && mm.Body.IsValid() {
				q.returns = append(q.returns, nil)
				q.eval(mm.Body, nil)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return int(a.Span.Start) - int(b.Span.Start)
	})
	return out
}

func memberEntryKind(mm *ast.Member) EntryKind {
	switch {
	case mm.IsConstructor():
		return EntryCtor
	case mm.Kind == ast.MemberMethod:
		return EntryMethod
	}
	return EntryField
}

// TypeAt types the innermost expression of file containing off. ok is false
// outside member initializers and bodies.
func (e *Evaluator) TypeAt(ctx context.Context, file ast.FileID, off uint32) (h types.Holder, node ast.NodeID, ok bool) {
	f := e.tab.B.File(file)
	if f == nil {
		return types.UnknownHolder(), ast.NoNodeID, false
	}
	for _, decl := range f.Decls {
		d := e.tab.Decl(decl)
		if !d.Span.Contains(off) {
			continue
		}
		for _, m := range d.Members {
			mm := e.tab.Member(m)
			if !mm.Span.Contains(off) {
				continue
			}
			if mm.NameSpan.Contains(off) {
				return e.MemberType(m, e.model.DeclaredInstance(decl)), ast.NoNodeID, true
			}
			for _, root := range append([]ast.NodeID{mm.Init, mm.Body}, mm.Params...) {
				if n := e.nodes.Innermost(root, off); n.IsValid() {
					return e.Evaluate(ctx, n, nil, nil, nil), n, true
				}
			}
		}
	}
	return types.UnknownHolder(), ast.NoNodeID, false
}
