// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// SourceExt is the file extension of Mini-Scheme source files.
const SourceExt = ".scm"

// expandArgs expands arguments, resolving patterns ending with "/..." to all
// source files found recursively under the given directory.  Other
// arguments pass through unchanged.  Paths matching any exclude pattern
// are dropped.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		dir, ok := strings.CutSuffix(arg, "/...")
		if !ok {
			if arg == "..." {
				dir, ok = ".", true
			}
		}
		if !ok {
			out = append(out, arg)
			continue
		}
		if dir == "" {
			dir = "."
		}
		files, err := findSourceFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return filterExcludes(out, excludes), nil
}

func findSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// filterExcludes drops paths where any path element matches one of the
// glob patterns.
func filterExcludes(paths, patterns []string) []string {
	if len(patterns) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !excluded(p, patterns) {
			out = append(out, p)
		}
	}
	return out
}

func excluded(path string, patterns []string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		for _, pat := range patterns {
			if ok, _ := filepath.Match(pat, elem); ok {
				return true
			}
		}
	}
	return false
}
