package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"hxinfer/internal/diag"
	"hxinfer/internal/source"
)

// Short prints one line per diagnostic:
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, base string) error {
	var b strings.Builder
	for _, d := range bag.Items() {
		if located(d.Primary, d.Code, fs) {
			b.WriteString(location(fs, d.Primary, mode, base) + ": ")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", d.Severity.Label(), d.Code.ID(), d.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
