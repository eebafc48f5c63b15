package diagfmt

import (
	"path/filepath"
	"strings"
)

// autoPathLimit is the longest path PathModeAuto prints in full.
const autoPathLimit = 48

func displayPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
			return filepath.ToSlash(abs)
		}
		return path
	case PathModeRelative:
		if rel, ok := relativeTo(path, base); ok {
			return rel
		}
		return path
	case PathModeBasename:
		return filepath.Base(path)
	}
	if rel, ok := relativeTo(path, base); ok {
		return rel
	}
	if len(path) > autoPathLimit {
		return filepath.Base(path)
	}
	return path
}

func relativeTo(path, base string) (string, bool) {
	if base == "" {
		return "", false
	}
	rel, err := filepath.Rel(filepath.FromSlash(base), filepath.FromSlash(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
