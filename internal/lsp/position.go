package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"hxinfer/internal/source"
)

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](max(n, 0))
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// utf16Prefix returns the byte length of the longest prefix of line that
// fits in units UTF-16 code units.
func utf16Prefix(line string, units int) int {
	seen := 0
	for i, r := range line {
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if seen+need > units {
			return i
		}
		seen += need
	}
	return len(line)
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}

// lineBounds is the byte range of a zero-based line without its newline.
func lineBounds(f *source.File, line int) (start, end uint32) {
	size := toUint32(len(f.Content))
	if line > 0 {
		start = f.LineIdx[line-1] + 1
	}
	end = size
	if line < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	return start, end
}

// offsetAt converts a client position to a byte offset in f.
func offsetAt(f *source.File, pos position) uint32 {
	if f == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line > len(f.LineIdx) {
		return toUint32(len(f.Content))
	}
	start, end := lineBounds(f, pos.Line)
	return start + toUint32(utf16Prefix(string(f.Content[start:end]), pos.Character))
}

// positionAt converts a byte offset in f to a client position.
func positionAt(f *source.File, off uint32) position {
	if f == nil {
		return position{}
	}
	off = min(off, toUint32(len(f.Content)))
	line := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	start, _ := lineBounds(f, line)
	return position{Line: line, Character: utf16Len(f.Content[start:off])}
}

func rangeOf(f *source.File, sp source.Span) lspRange {
	return lspRange{Start: positionAt(f, sp.Start), End: positionAt(f, sp.End)}
}
