// Package lang infers a language label and markdown fence tag from a file
// extension. The label feeds the oracle prompts; the fence tag drives code
// extraction from oracle responses.
package lang

import (
	"path/filepath"
	"strings"
)

type Language struct {
	// Label is the display name used in prompts, e.g. "Python", "Go".
	Label string
	// Fence is the markdown fence tag, e.g. "python", "go".
	Fence string
}

var byExtension = map[string]Language{
	".py":    {"Python", "python"},
	".go":    {"Go", "go"},
	".java":  {"Java", "java"},
	".kt":    {"Kotlin", "kotlin"},
	".js":    {"JavaScript", "javascript"},
	".ts":    {"TypeScript", "typescript"},
	".tsx":   {"TypeScript React", "tsx"},
	".jsx":   {"JavaScript React", "jsx"},
	".rs":    {"Rust", "rust"},
	".cpp":   {"C++", "cpp"},
	".cc":    {"C++", "cpp"},
	".cxx":   {"C++", "cpp"},
	".c":     {"C", "c"},
	".h":     {"C/C++ Header", "c"},
	".rb":    {"Ruby", "ruby"},
	".php":   {"PHP", "php"},
	".swift": {"Swift", "swift"},
	".scala": {"Scala", "scala"},
	".sh":    {"Shell", "bash"},
}

// Default is returned for empty paths and unknown extensions.
var Default = Language{Label: "Python", Fence: "python"}

// FromPath resolves the language of a source file by its extension.
func FromPath(path string) Language {
	if strings.TrimSpace(path) == "" {
		return Default
	}
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := byExtension[ext]; ok {
		return l
	}
	return Default
}
