package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFileGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.go")
	require.NoError(t, os.WriteFile(path, []byte("package f\n"), 0o644))

	h1, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.Unchanged, Gate(h1, h1))

	require.NoError(t, os.WriteFile(path, []byte("package f2\n"), 0o644))
	h2, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.Changed, Gate(h1, h2))
	assert.NotEqual(t, h1, h2)
}

func TestFastFingerprintDeterministic(t *testing.T) {
	assert.Equal(t, FastFingerprint("hello"), FastFingerprint("hello"))
	assert.NotEqual(t, FastFingerprint("hello"), FastFingerprint("world"))
}
