package lexer

import (
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil, тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
}
