package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// ParseError reports malformed frontmatter YAML. It carries the file path
// and the offending fragment so batch callers can surface it per file.
type ParseError struct {
	// Path is the file whose frontmatter failed to parse.
	Path string

	// Fragment is a capped excerpt of the offending YAML.
	Fragment string

	// Err is the underlying YAML error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse frontmatter %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// splitFrontmatter separates a leading ---\n<YAML>\n--- block from the
// document and returns the decoded map plus the byte offset at which the
// body resumes. A document without frontmatter yields a nil map and
// offset 0. Malformed YAML yields a ParseError.
func splitFrontmatter(path, content string) (map[string]any, int, error) {
	if !strings.HasPrefix(content, fmDelim+"\n") && !strings.HasPrefix(content, fmDelim+"\r\n") {
		return nil, 0, nil
	}
	blockStart := len(fmDelim) + 1
	if content[len(fmDelim)] == '\r' {
		blockStart++
	}

	// The closing delimiter must sit on its own line.
	search := blockStart
	for {
		idx := strings.Index(content[search:], "\n"+fmDelim)
		if idx < 0 {
			return nil, 0, nil
		}
		delimLine := search + idx + 1
		after := delimLine + len(fmDelim)
		if after == len(content) || content[after] == '\n' || content[after] == '\r' {
			block := content[blockStart : delimLine-1]
			if after < len(content) && content[after] == '\r' {
				after++
			}
			if after < len(content) && content[after] == '\n' {
				after++
			}
			var fm map[string]any
			if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
				return nil, 0, &ParseError{Path: path, Fragment: truncate(block, 120), Err: err}
			}
			return fm, after, nil
		}
		search = after
	}
}

// DeriveTitle resolves a document title: frontmatter title first, then
// the first level-1 heading, then the filename without extension.
func DeriveTitle(fm map[string]any, body, path string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// stringList coerces a frontmatter value into a string slice. Anything
// that is not a YAML list yields nil.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
