package parser

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileGo(t *testing.T) {
	src := []byte(`package sample

type Greeter struct{}

func (g *Greeter) Hello(name string) string {
	return say(name)
}

func say(name string) string {
	return "hi " + name
}
`)
	res := ExtractFile("sample.go", src, false)
	require.Empty(t, res.ParseError)
	assert.Equal(t, "go", res.Language)

	var kinds []types.NodeKind
	var names []string
	for _, n := range res.Nodes {
		kinds = append(kinds, n.Kind)
		names = append(names, n.Name)
	}
	assert.Contains(t, kinds, types.KindStruct)
	assert.Contains(t, kinds, types.KindMethod)
	assert.Contains(t, kinds, types.KindFunction)
	assert.Contains(t, names, "Greeter")
	assert.Contains(t, names, "Hello")
	assert.Contains(t, names, "say")
}

func TestExtractFileGoQualifiedNameNesting(t *testing.T) {
	src := []byte(`package sample

type Box struct{}

func (b *Box) Open() {}
`)
	res := ExtractFile("box.go", src, false)
	require.Empty(t, res.ParseError)

	var method *types.Node
	for i := range res.Nodes {
		if res.Nodes[i].Kind == types.KindMethod {
			method = &res.Nodes[i]
		}
	}
	require.NotNil(t, method)
	assert.Equal(t, "box.Open", method.QualifiedName)
}

func TestExtractFileFallback(t *testing.T) {
	res := ExtractFile("data.unknownext", []byte("some opaque content"), false)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, types.KindModule, res.Nodes[0].Kind)
	assert.Equal(t, "text", res.Language)
}

func TestExtractFileCallEdges(t *testing.T) {
	src := []byte(`package sample

func a() {
	b()
}

func b() {}
`)
	res := ExtractFile("calls.go", src, false)
	require.Empty(t, res.ParseError)
	require.NotEmpty(t, res.CallSites)
	assert.Equal(t, "b", res.CallSites[0].TargetName)
}

func TestIsExportedName(t *testing.T) {
	assert.True(t, isExportedName("Hello", "go"))
	assert.False(t, isExportedName("hello", "go"))
	assert.False(t, isExportedName("_private", "python"))
	assert.True(t, isExportedName("public", "python"))
}
