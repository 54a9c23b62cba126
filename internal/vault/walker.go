// Package vault enumerates and loads the Markdown documents of a vault.
package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// File is one Markdown document read from the vault.
type File struct {
	// Path is the absolute file path.
	Path string

	// RelativePath is the slash-separated path relative to the vault
	// root, used as the node path.
	RelativePath string

	// Content is the raw file content.
	Content string

	// ContentHash is the sha256 hex digest of the content.
	ContentHash string

	// Size is the file size in bytes.
	Size int64

	// CreatedAt and ModifiedAt come from the file stats. Birth time is
	// not portable, so CreatedAt carries the modification time too.
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Markdown extensions recognized as vault documents.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Default patterns to ignore (in addition to .gitignore and configured
// patterns). Dotted directories are skipped unconditionally.
var defaultIgnorePatterns = []string{
	".zettelscript/",
	"node_modules/",
	".DS_Store",
	"Thumbs.db",
}

// Walker enumerates the Markdown files of a vault, honoring ignore
// patterns from the vault's .gitignore, the configuration, and the
// built-in defaults.
type Walker struct {
	root    string
	matcher gitignore.Matcher
}

// NewWalker creates a walker rooted at the vault directory.
func NewWalker(root string, ignorePatterns []string) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}

	patterns := make([]gitignore.Pattern, 0, len(defaultIgnorePatterns)+len(ignorePatterns))
	for _, p := range defaultIgnorePatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, p := range ignorePatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	loaded, err := loadGitignore(abs)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, loaded...)

	return &Walker{
		root:    abs,
		matcher: gitignore.NewMatcher(patterns),
	}, nil
}

// Root returns the absolute vault root.
func (w *Walker) Root() string {
	return w.root
}

// Walk returns the absolute paths of every Markdown file under the
// root, in lexical order. Files are not read; use Load.
func (w *Walker) Walk() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != w.root && w.IgnoresDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.Accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}

	return paths, nil
}

// Load reads a single file into a File record.
func (w *Walker) Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stating %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return nil, fmt.Errorf("relativizing %s: %w", path, err)
	}

	hash := sha256.Sum256(content)

	return &File{
		Path:         path,
		RelativePath: filepath.ToSlash(rel),
		Content:      string(content),
		ContentHash:  hex.EncodeToString(hash[:]),
		Size:         info.Size(),
		CreatedAt:    info.ModTime(),
		ModifiedAt:   info.ModTime(),
	}, nil
}

// Accepts reports whether path names a Markdown document inside the
// vault that is not ignored.
func (w *Walker) Accepts(path string) bool {
	if !isMarkdownFile(path) {
		return false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range splitPath(rel) {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return !w.matcher.Match(splitPath(rel), false)
}

// IgnoresDir reports whether the directory should not be traversed or
// watched.
func (w *Walker) IgnoresDir(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.matcher.Match(splitPath(rel), true)
}

// RelativePath converts an absolute path inside the vault to the
// slash-separated node path.
func (w *Walker) RelativePath(path string) (string, error) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

// loadGitignore loads .gitignore patterns from the vault root.
func loadGitignore(root string) ([]gitignore.Pattern, error) {
	gitignorePath := filepath.Join(root, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, nil
}

// isMarkdownFile checks if a file has a Markdown extension.
func isMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return markdownExtensions[ext]
}

// splitPath splits a path into its components.
func splitPath(path string) []string {
	return strings.Split(path, string(filepath.Separator))
}
