package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
	return root
}

func TestWalker_Walk(t *testing.T) {
	t.Parallel()

	root := writeVault(t, map[string]string{
		"moby.md":                    "# Moby Dick",
		"notes/ahab.md":              "# Ahab",
		"notes/deep/pequod.markdown": "# Pequod",
		"notes/outline.txt":          "not markdown",
		".obsidian/workspace.md":     "editor state",
		".zettelscript/scratch.md":   "data dir",
		"drafts/abandoned.md":        "# Abandoned",
		".gitignore":                 "drafts/\n",
	})

	t.Run("FindsMarkdownFiles", func(t *testing.T) {
		w, err := NewWalker(root, nil)
		require.NoError(t, err)

		paths, err := w.Walk()
		require.NoError(t, err)
		require.Len(t, paths, 3)

		var rels []string
		for _, p := range paths {
			rel, err := w.RelativePath(p)
			require.NoError(t, err)
			rels = append(rels, rel)
		}
		assert.Equal(t, []string{"moby.md", "notes/ahab.md", "notes/deep/pequod.markdown"}, rels)
	})

	t.Run("SkipsDottedDirectories", func(t *testing.T) {
		w, err := NewWalker(root, nil)
		require.NoError(t, err)

		paths, err := w.Walk()
		require.NoError(t, err)
		for _, p := range paths {
			assert.NotContains(t, p, ".obsidian")
			assert.NotContains(t, p, ".zettelscript")
		}
	})

	t.Run("RespectsGitignore", func(t *testing.T) {
		w, err := NewWalker(root, nil)
		require.NoError(t, err)

		paths, err := w.Walk()
		require.NoError(t, err)
		for _, p := range paths {
			assert.NotContains(t, p, "drafts")
		}
	})

	t.Run("ConfiguredIgnores", func(t *testing.T) {
		w, err := NewWalker(root, []string{"notes/"})
		require.NoError(t, err)

		paths, err := w.Walk()
		require.NoError(t, err)
		require.Len(t, paths, 1)
		assert.Equal(t, filepath.Join(root, "moby.md"), paths[0])
	})
}

func TestWalker_Load(t *testing.T) {
	t.Parallel()

	content := "# Moby Dick\n\nCall me [[Ishmael]].\n"
	root := writeVault(t, map[string]string{
		"notes/moby.md": content,
	})

	w, err := NewWalker(root, nil)
	require.NoError(t, err)

	t.Run("KnownContent", func(t *testing.T) {
		file, err := w.Load(filepath.Join(root, "notes", "moby.md"))
		require.NoError(t, err)

		assert.Equal(t, "notes/moby.md", file.RelativePath)
		assert.Equal(t, content, file.Content)
		assert.Equal(t, int64(len(content)), file.Size)
		assert.False(t, file.ModifiedAt.IsZero())

		expected := sha256.Sum256([]byte(content))
		assert.Equal(t, hex.EncodeToString(expected[:]), file.ContentHash)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := w.Load(filepath.Join(root, "gone.md"))
		assert.Error(t, err)
	})
}

func TestWalker_Accepts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := NewWalker(root, []string{"archive/"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"Markdown", "moby.md", true},
		{"MarkdownLongExtension", "pequod.markdown", true},
		{"Nested", "notes/deep/ahab.md", true},
		{"Text", "outline.txt", false},
		{"HiddenFile", ".secret.md", false},
		{"DottedDirectory", ".obsidian/workspace.md", false},
		{"DataDirectory", ".zettelscript/scratch.md", false},
		{"ConfiguredIgnore", "archive/old.md", false},
		{"OutsideVault", "../outside.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := w.Accepts(filepath.Join(root, tt.path))
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadGitignore(t *testing.T) {
	t.Parallel()

	t.Run("NoGitignore", func(t *testing.T) {
		patterns, err := loadGitignore(t.TempDir())
		assert.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("SkipsCommentsAndBlanks", func(t *testing.T) {
		root := t.TempDir()
		content := "# private\n\ndrafts/\n*.tmp\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(content), 0o644))

		patterns, err := loadGitignore(root)
		assert.NoError(t, err)
		assert.Len(t, patterns, 2)
	})
}

func TestIsMarkdownFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"Lowercase", "moby.md", true},
		{"Uppercase", "MOBY.MD", true},
		{"Long", "pequod.markdown", true},
		{"Text", "outline.txt", false},
		{"NoExtension", "Makefile", false},
		{"MarkdownInName", "md.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, isMarkdownFile(tt.filename))
		})
	}
}

func TestWalker_RelativePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := NewWalker(root, nil)
	require.NoError(t, err)

	rel, err := w.RelativePath(filepath.Join(root, "notes", "moby.md"))
	require.NoError(t, err)
	assert.Equal(t, "notes/moby.md", rel)

	rel, err = w.RelativePath(filepath.Join(root, "..", "outside.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, ".."))
}
