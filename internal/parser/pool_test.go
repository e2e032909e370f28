package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunCollectsAllFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{}
	for i, src := range []string{
		"package a\nfunc One() {}\n",
		"package a\nfunc Two() {}\n",
		"package a\nfunc Three() {}\n",
	} {
		p := filepath.Join(dir, string(rune('a'+i))+".go")
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
		paths = append(paths, p)
	}

	var sources []FileSource
	for _, p := range paths {
		sources = append(sources, FileSource{Path: p})
	}

	var results []FileResult
	pool := NewPool(2)
	err := pool.Run(context.Background(), sources, func(r FileResult) error {
		results = append(results, r)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, r := range results {
		assert.Empty(t, r.ParseError)
		assert.NotEmpty(t, r.Nodes)
	}
}

func TestPoolRunReadError(t *testing.T) {
	pool := NewPool(1)
	var results []FileResult
	err := pool.Run(context.Background(), []FileSource{{Path: "/nonexistent/path.go"}}, func(r FileResult) error {
		results = append(results, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].ParseError)
}
