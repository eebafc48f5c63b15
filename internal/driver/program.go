package driver

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/eval"
	"hxinfer/internal/observ"
	"hxinfer/internal/parser"
	"hxinfer/internal/source"
	"hxinfer/internal/symbols"
	"hxinfer/internal/trace"
	"hxinfer/internal/types"
)

// Input is one file of a program. Content nil means "read Path from disk".
type Input struct {
	Path    string
	Content []byte
}

// Unit is one loaded and parsed file.
type Unit struct {
	Path string
	Src  source.FileID
	File ast.FileID // NoFileID when the file failed to load
	Bag  *diag.Bag
}

// Loaded reports whether the unit has a syntax tree.
func (u *Unit) Loaded() bool { return u.File.IsValid() }

// Program is a set of files sharing one declaration table and evaluator.
type Program struct {
	FS    *source.FileSet
	B     *ast.Builder
	Tab   *symbols.Table
	Model *types.Model
	Eval  *eval.Evaluator
	Units []*Unit
	// Bag holds diagnostics not located in any unit (prelude, index).
	Bag *diag.Bag
}

type BuildOptions struct {
	MaxDiagnostics int
	Eval           eval.Options
	Timer          *observ.Timer
}

// Build loads, parses and indexes inputs. Load failures become
// IOLoadFileError diagnostics on the unit; Build itself fails only on
// cancellation.
func Build(ctx context.Context, inputs []Input, opts BuildOptions) (*Program, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	p := &Program{
		FS:    source.NewFileSet(),
		B:     ast.NewBuilder(ast.Hints{}),
		Units: make([]*Unit, len(inputs)),
		Bag:   diag.NewBag(opts.MaxDiagnostics),
	}

	span := trace.Begin(tracer, trace.ScopePass, "load", parent)
	done := opts.Timer.Track("load")
	for i, in := range inputs {
		u := &Unit{Path: in.Path, File: ast.NoFileID, Bag: diag.NewBag(opts.MaxDiagnostics)}
		p.Units[i] = u
		if in.Content != nil {
			u.Src = p.FS.AddVirtual(in.Path, in.Content)
			continue
		}
		id, err := p.FS.Load(in.Path)
		if err != nil {
			u.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  "failed to load file: " + err.Error(),
			})
			continue
		}
		u.Src = id
	}
	done(fmt.Sprintf("%d files", len(inputs)))
	span.End("")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxErrors, err := safecast.Conv[uint](max(opts.MaxDiagnostics, 0))
	if err != nil {
		return nil, fmt.Errorf("max diagnostics overflow: %w", err)
	}
	span = trace.Begin(tracer, trace.ScopePass, "parse", parent)
	done = opts.Timer.Track("parse")
	files := make([]ast.FileID, 0, len(inputs))
	for _, u := range p.Units {
		if u.Bag.HasErrors() {
			continue
		}
		res := parser.ParseFile(p.FS.Get(u.Src), p.B, parser.Options{
			Reporter:  diag.BagReporter{Bag: u.Bag},
			MaxErrors: maxErrors,
		})
		u.File = res.File
		files = append(files, res.File)
	}
	done("")
	span.End("")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	span = trace.Begin(tracer, trace.ScopePass, "index", parent)
	done = opts.Timer.Track("index")
	p.Tab = symbols.Build(p.FS, p.B, files, symbols.Options{Reporter: p.route()})
	p.Model = types.NewModel(p.Tab)
	p.Eval = eval.New(p.Model, opts.Eval)
	done("")
	span.End("")
	return p, nil
}

// route sends a diagnostic to the unit owning its primary span.
func (p *Program) route() diag.Reporter {
	bySrc := make(map[source.FileID]*Unit, len(p.Units))
	for _, u := range p.Units {
		if u.Loaded() {
			bySrc[u.Src] = u
		}
	}
	return diag.ReporterFunc(func(d diag.Diagnostic) {
		if u, ok := bySrc[d.Primary.File]; ok {
			u.Bag.Add(d)
			return
		}
		p.Bag.Add(d)
	})
}

// Unit returns the unit of path, nil when absent.
func (p *Program) Unit(path string) *Unit {
	for _, u := range p.Units {
		if u.Path == path {
			return u
		}
	}
	return nil
}
