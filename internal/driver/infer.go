package driver

import (
	"context"
	"errors"
	"fmt"

	"hxinfer/internal/ast"
	"hxinfer/internal/eval"
	"hxinfer/internal/source"
	"hxinfer/internal/types"
)

// ErrNoExpression is returned by InferResult.At outside any expression.
var ErrNoExpression = errors.New("no expression at position")

// InferResult lists what one file declares with inferred types.
type InferResult struct {
	Program *Program
	Unit    *Unit
	Entries []eval.Entry
}

// Infer builds a program of one file and types its members and locals.
// content nil reads path from disk.
func Infer(ctx context.Context, path string, content []byte, opts BuildOptions) (*InferResult, error) {
	prog, err := Build(ctx, []Input{{Path: path, Content: content}}, opts)
	if err != nil {
		return nil, err
	}
	u := prog.Units[0]
	if !u.Loaded() {
		return &InferResult{Program: prog, Unit: u}, nil
	}
	return &InferResult{
		Program: prog,
		Unit:    u,
		Entries: prog.Eval.Inventory(ctx, u.File),
	}, nil
}

// At types the innermost expression at a 1-based line and column.
func (r *InferResult) At(ctx context.Context, pos source.LineCol) (types.Holder, source.Span, error) {
	if r == nil || !r.Unit.Loaded() {
		return types.UnknownHolder(), source.Span{}, ErrNoExpression
	}
	f := r.Program.FS.Get(r.Unit.Src)
	if pos.Line == 0 || int(pos.Line) > len(f.LineIdx)+1 {
		return types.UnknownHolder(), source.Span{}, fmt.Errorf("line %d out of range", pos.Line)
	}
	off := f.Offset(pos)
	h, node, ok := r.Program.Eval.TypeAt(ctx, r.Unit.File, off)
	if !ok {
		return types.UnknownHolder(), source.Span{}, fmt.Errorf("%w %d:%d", ErrNoExpression, pos.Line, pos.Col)
	}
	var sp source.Span
	if n := r.Program.B.Nodes.Get(node); node != ast.NoNodeID && n != nil {
		sp = n.Span
	}
	return h, sp, nil
}
