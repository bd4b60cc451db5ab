// Package workspace locates the repair target inside the workspace directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindEntryFile resolves the file a session should repair.
//
// Strategy:
//  1. exact match on entryName directly under root;
//  2. fall back to the first top-level file sharing entryName's extension,
//     sorted by name;
//  3. error when the workspace is missing or holds no candidate.
//
// A missing workspace is a fatal startup condition, reported distinctly from
// execution failures.
func FindEntryFile(root, entryName string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("workspace directory not found: %s", absRoot)
	}

	if strings.TrimSpace(entryName) == "" {
		entryName = "main.py"
	}
	exact := filepath.Join(absRoot, entryName)
	if fi, err := os.Stat(exact); err == nil && fi.Mode().IsRegular() {
		return exact, nil
	}

	candidates, err := listSources(absRoot, filepath.Ext(entryName))
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no %s files in workspace %s", filepath.Ext(entryName), absRoot)
	}
	return candidates[0], nil
}

// listSources returns absolute paths of top-level files under root matching
// the extension, sorted by name.
func listSources(root, ext string) ([]string, error) {
	pattern := "*" + ext
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		full := filepath.Join(root, m)
		if fi, err := os.Stat(full); err == nil && fi.Mode().IsRegular() {
			out = append(out, full)
		}
	}
	sort.Strings(out)
	return out, nil
}
