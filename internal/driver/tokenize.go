package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"hxinfer/internal/diag"
	"hxinfer/internal/lexer"
	"hxinfer/internal/source"
	"hxinfer/internal/token"
)

type TokenizeResult struct {
	Path   string
	File   *source.File
	Tokens []token.Token
	Bag    *diag.Bag
}

// TokenizeFiles lexes every path in parallel. Results keep the order of
// paths; a file that fails to load gets an IOLoadFileError diagnostic and
// no tokens.
func TokenizeFiles(ctx context.Context, paths []string, maxDiagnostics, jobs int) (*source.FileSet, []TokenizeResult, error) {
	fileSet := source.NewFileSet()
	results := make([]TokenizeResult, len(paths))
	for i, path := range paths {
		results[i] = TokenizeResult{Path: path, Bag: diag.NewBag(maxDiagnostics)}
		id, err := fileSet.Load(path)
		if err != nil {
			results[i].Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  "failed to load file: " + err.Error(),
			})
			continue
		}
		results[i].File = fileSet.Get(id)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i := range results {
		r := &results[i]
		if r.File == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lx := lexer.New(r.File, lexer.Options{Reporter: diag.BagReporter{Bag: r.Bag}})
			r.Tokens = lx.All()
			return nil
		})
	}
	return fileSet, results, g.Wait()
}
