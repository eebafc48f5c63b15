package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"hxinfer/internal/ast"
	"hxinfer/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span is non-empty and within file content bounds
// 2) every declaration and member span is non-empty and inside file.Span
// 3) file.Span covers the union of declaration spans (if any exist)
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.File(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	var union source.Span
	var haveDecl bool
	for _, id := range f.Decls {
		d := b.Decl(id)
		if d == nil {
			return fmt.Errorf("nil decl for id=%d", id)
		}
		if err := spanInside(d.Span, f.Span, "decl "+d.Name); err != nil {
			return err
		}
		for _, m := range d.Members {
			mm := b.Member(m)
			if err := spanInside(mm.Span, d.Span, "member "+d.Name+"."+mm.Name); err != nil {
				return err
			}
		}
		if !haveDecl {
			union = d.Span
			haveDecl = true
		} else {
			union = union.Cover(d.Span)
		}
	}

	if haveDecl && !union.Within(f.Span) {
		return fmt.Errorf("file span %v does not cover union of decls %v", f.Span, union)
	}
	return nil
}

func spanInside(sp, outer source.Span, what string) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("empty %s span: %v", what, sp)
	}
	if sp.File != outer.File {
		return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, outer.File)
	}
	if !sp.Within(outer) {
		return fmt.Errorf("%s span %v is outside %v", what, sp, outer)
	}
	return nil
}
