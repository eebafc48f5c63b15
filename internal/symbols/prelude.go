package symbols

import (
	_ "embed"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/parser"
	"hxinfer/internal/source"
)

//go:embed prelude.hx
var preludeSource []byte

// PreludePath is the virtual path of the embedded core declarations.
const PreludePath = "<prelude>/prelude.hx"

// parsePrelude adds the core declarations to fs and parses them into b.
func parsePrelude(fs *source.FileSet, b *ast.Builder, reporter diag.Reporter) ast.FileID {
	content, flags := source.Normalize(preludeSource)
	id := fs.Add(PreludePath, content, flags|source.FileVirtual|source.FilePrelude)
	res := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: reporter})
	return res.File
}
