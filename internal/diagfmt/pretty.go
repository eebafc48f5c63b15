package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"hxinfer/internal/diag"
	"hxinfer/internal/source"
)

const tabWidth = 4

type palette struct {
	sev     map[diag.Severity]*color.Color
	code    *color.Color
	gutter  *color.Color
	note    *color.Color
	fix     *color.Color
	removed *color.Color
	added   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:       color.New(color.FgRed, color.Bold),
			diag.SevWarning:     color.New(color.FgYellow, color.Bold),
			diag.SevWeakWarning: color.New(color.FgYellow),
			diag.SevInfo:        color.New(color.FgCyan),
		},
		code:    color.New(color.Faint),
		gutter:  color.New(color.FgBlue, color.Bold),
		note:    color.New(color.FgCyan, color.Bold),
		fix:     color.New(color.FgGreen, color.Bold),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.gutter, p.note, p.fix, p.removed, p.added}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой
// диагностики печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	var b strings.Builder
	for _, d := range bag.Items() {
		writeHeader(&b, pal, d, fs, opts.PathMode, opts.BaseDir)
		if located(d.Primary, d.Code, fs) {
			writeSnippet(&b, pal, fs, d.Primary, int(max(opts.Context, 0)))
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				b.WriteString("  " + pal.note.Sprint("note") + ": ")
				if located(n.Span, d.Code, fs) {
					b.WriteString(location(fs, n.Span, opts.PathMode, opts.BaseDir) + ": ")
				}
				b.WriteString(n.Msg + "\n")
			}
		}
		if opts.ShowFixes {
			for _, f := range d.Fixes {
				b.WriteString("  " + pal.fix.Sprint("fix") + ": " + f.Title + "\n")
				if !opts.ShowPreview {
					continue
				}
				for _, e := range f.Edits {
					preview, err := buildFixEditPreview(fs, e)
					if err != nil {
						continue
					}
					for _, line := range preview.before {
						b.WriteString("    " + pal.removed.Sprint("- "+expandTabs(line)) + "\n")
					}
					for _, line := range preview.after {
						b.WriteString("    " + pal.added.Sprint("+ "+expandTabs(line)) + "\n")
					}
				}
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, pal palette, d diag.Diagnostic, fs *source.FileSet, mode PathMode, base string) {
	if located(d.Primary, d.Code, fs) {
		b.WriteString(location(fs, d.Primary, mode, base) + ": ")
	}
	sev := pal.sev[d.Severity]
	if sev == nil {
		sev = pal.code
	}
	fmt.Fprintf(b, "%s %s: %s\n", sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)
}

// writeSnippet prints the primary line with context lines around it and a
// caret line under the span. Columns are display widths, tabs expanded.
func writeSnippet(b *strings.Builder, pal palette, fs *source.FileSet, sp source.Span, context int) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	first := uint32(max(int(start.Line)-context, 1))
	last := start.Line + uint32(context) //nolint:gosec // context is a small int8
	lines := uint32(len(f.LineIdx) + 1)  //nolint:gosec // checked by FileSet
	last = min(last, lines)
	width := len(strconv.Itoa(int(last)))

	for line := first; line <= last; line++ {
		text := f.GetLine(line)
		fmt.Fprintf(b, "  %s %s\n", pal.gutter.Sprintf("%*d |", width, line), expandTabs(text))
		if line != start.Line {
			continue
		}
		prefix := text[:min(int(start.Col-1), len(text))]
		endCol := len(text) + 1
		if end.Line == start.Line {
			endCol = min(int(end.Col), len(text)+1)
		}
		marked := text[len(prefix):max(endCol-1, len(prefix))]
		pad := runewidth.StringWidth(expandTabs(prefix))
		n := max(runewidth.StringWidth(expandTabs(marked)), 1)
		caret := "^" + strings.Repeat("~", n-1)
		fmt.Fprintf(b, "  %s %s%s\n", pal.gutter.Sprint(strings.Repeat(" ", width)+" |"), strings.Repeat(" ", pad), pal.sev[diag.SevError].Sprint(caret))
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode, base string) string {
	start, _ := fs.Resolve(sp)
	path := displayPath(fs.Get(sp.File).Path, mode, base)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func located(sp source.Span, code diag.Code, fs *source.FileSet) bool {
	return code.Located() && fs != nil && int(sp.File) < fs.Len()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
