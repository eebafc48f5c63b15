package trace

import (
	"io"
	"os"
)

func isStdio(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}
