package project

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// SourceExt is the extension of files picked up from directories.
const SourceExt = ".hx"

// Sources lists the files to check. Explicit file arguments are kept as
// given; directories are walked for SourceExt files. Without arguments the
// include list (or the root itself) is walked. Exclude patterns match
// slash-separated paths relative to the root; `**` matches any number of
// path elements. The result is sorted and free of duplicates.
func (p *Project) Sources(args []string) ([]string, error) {
	roots := args
	if len(roots) == 0 {
		for _, inc := range p.Config.Sources.Include {
			roots = append(roots, filepath.Join(p.Root, filepath.FromSlash(inc)))
		}
		if len(roots) == 0 {
			roots = []string{p.Root}
		}
	}
	var out []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && p.Excluded(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if path == root || filepath.Ext(path) == SourceExt {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to collect sources from %q: %w", root, err)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Excluded reports whether path matches one of the exclude patterns.
func (p *Project) Excluded(path string) bool {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range p.Config.Sources.Exclude {
		if MatchPath(pattern, rel) {
			return true
		}
	}
	return false
}

// MatchPath matches a slash-separated path against a glob where `**`
// stands for zero or more whole elements.
func MatchPath(pattern, path string) bool {
	return matchParts(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

func matchParts(pattern, path []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for i := 0; i <= len(path); i++ {
				if matchParts(pattern[1:], path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if ok, _ := filepath.Match(pattern[0], path[0]); !ok {
			return false
		}
		pattern, path = pattern[1:], path[1:]
	}
	return len(path) == 0
}
