package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkDeterministicOrderAndGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b\n")
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "vendor", "dep.go"), "package dep\n")
	writeFile(t, filepath.Join(root, ".gitignore"), "vendor/\n")

	got, err := Walk(Options{Root: root, RespectGitignore: true, FollowSymlinks: true})
	require.NoError(t, err)

	var rels []string
	for _, c := range got {
		rels = append(rels, c.RelPath)
	}
	assert.Equal(t, []string{".gitignore", "a.go", "b.go"}, rels)
}

func TestWalkSkipsBinaryAndOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package keep\n")
	writeFile(t, filepath.Join(root, "image.png"), "\x89PNG\x00binarydata")
	writeFile(t, filepath.Join(root, "huge.go"), "package huge\n// padding\n")

	got, err := Walk(Options{Root: root, FollowSymlinks: true, MaxFileSize: 20})
	require.NoError(t, err)

	var rels []string
	for _, c := range got {
		rels = append(rels, c.RelPath)
	}
	assert.Contains(t, rels, "keep.go")
	assert.NotContains(t, rels, "image.png")
	assert.NotContains(t, rels, "huge.go")
}

func TestWalkExcludeTests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "main_test.go"), "package main\n")

	got, err := Walk(Options{Root: root, ExcludeTests: true, FollowSymlinks: true})
	require.NoError(t, err)

	var rels []string
	for _, c := range got {
		rels = append(rels, c.RelPath)
	}
	assert.Contains(t, rels, "main.go")
	assert.NotContains(t, rels, "main_test.go")
}

func TestGitignoreMatcherNegation(t *testing.T) {
	m := NewGitignoreMatcher()
	m.AddLine("*.log")
	m.AddLine("!important.log")

	assert.True(t, m.ShouldIgnore("debug.log", false))
	assert.False(t, m.ShouldIgnore("important.log", false))
}
