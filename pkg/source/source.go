package source

import (
	"path/filepath"
	"strings"
)

// SourceFile is a fixture or script file an agent evaluates. A ScriptOrModule
// record points at one of these so uncaught errors can be attributed.
type SourceFile struct {
	Name    string // Display name (e.g., "arguments.yaml", "<inline>")
	Path    string // Full file path (empty for inline sources)
	Content string
	lines   []string
}

// NewSourceFile creates a new source file.
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewInlineSource creates a source file for content that did not come from disk.
func NewInlineSource(content string) *SourceFile {
	return &SourceFile{Name: "<inline>", Content: content}
}

// FromFile creates a SourceFile from a file path and content.
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Lines returns the source split into lines (cached).
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r\n\t ")
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name).
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}
