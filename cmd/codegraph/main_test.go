package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFixtureProject lays down a tiny two-file Go project under a
// fresh temp directory: greeter.go defines Greet, which main.go calls,
// so indexing produces at least one resolved `calls` edge.
func writeFixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	mainSrc := `package main

func main() {
	Greet("world")
}
`
	greeterSrc := `package main

import "fmt"

// Greet prints a friendly hello.
func Greet(name string) {
	fmt.Println("hello " + name)
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(mainSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "greeter.go"), []byte(greeterSrc), 0o644))
	return root
}

// runApp drives newApp() in-process with args, returning stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	full := append([]string{"codegraph"}, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func TestIndexThenSearchRoundTrip(t *testing.T) {
	root := writeFixtureProject(t)

	_, err := runApp(t, "--root", root, "index", "--quiet")
	require.NoError(t, err)

	out, err := runApp(t, "--root", root, "search", "Greet")
	require.NoError(t, err)
	require.Contains(t, out, "Greet")
}

func TestIndexThenStatusReportsLastIndexed(t *testing.T) {
	root := writeFixtureProject(t)

	_, err := runApp(t, "--root", root, "index", "--quiet")
	require.NoError(t, err)

	out, err := runApp(t, "--root", root, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Last indexed:")
}

func TestStatusBeforeIndexIsNotAnError(t *testing.T) {
	root := t.TempDir()

	out, err := runApp(t, "--root", root, "status")
	require.NoError(t, err)
	require.Contains(t, out, "not indexed yet")
}

func TestCallersAfterIndex(t *testing.T) {
	root := writeFixtureProject(t)

	_, err := runApp(t, "--root", root, "index", "--quiet")
	require.NoError(t, err)

	out, err := runApp(t, "--root", root, "callers", "greeter.Greet")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "Greet") || strings.Contains(out, "main"))
}

func TestSearchRequiresQueryArgument(t *testing.T) {
	root := writeFixtureProject(t)
	_, err := runApp(t, "--root", root, "search")
	require.Error(t, err)
}

func TestCallersRequiresSymbolArgument(t *testing.T) {
	root := writeFixtureProject(t)
	_, err := runApp(t, "--root", root, "callers")
	require.Error(t, err)
}

func TestDeadCodeAfterIndexRuns(t *testing.T) {
	root := writeFixtureProject(t)

	_, err := runApp(t, "--root", root, "index", "--quiet")
	require.NoError(t, err)

	_, err = runApp(t, "--root", root, "dead-code", "--json")
	require.NoError(t, err)
}

func TestPageRankAfterIndexRuns(t *testing.T) {
	root := writeFixtureProject(t)

	_, err := runApp(t, "--root", root, "index", "--quiet")
	require.NoError(t, err)

	out, err := runApp(t, "--root", root, "pagerank", "--json")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}
