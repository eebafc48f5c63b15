package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// document is one buffer the client has open.
type document struct {
	text    string
	version int
}

// uriToPath maps a file URI to a clean absolute path; other schemes map to
// "".
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	path := uri
	switch parsed.Scheme {
	case "file":
		path = parsed.Path
	case "":
	default:
		return ""
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// canonicalURI round-trips uri through a path so that differently escaped
// spellings of one file compare equal.
func canonicalURI(uri string) string {
	return pathToURI(uriToPath(uri))
}

// applyChanges applies content changes in order; a change without range
// replaces the whole text.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetInText(text, change.Range.Start)
		end := max(offsetInText(text, change.Range.End), start)
		var b strings.Builder
		b.Grow(len(text) - (end - start) + len(change.Text))
		b.WriteString(text[:start])
		b.WriteString(change.Text)
		b.WriteString(text[end:])
		text = b.String()
	}
	return text
}

// offsetInText converts a position to a byte offset clamped to text.
func offsetInText(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	start := 0
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return len(text)
		}
		start += nl + 1
	}
	end := strings.IndexByte(text[start:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += start
	}
	return start + utf16Prefix(text[start:end], pos.Character)
}
