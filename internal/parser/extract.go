package parser

import (
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/hasher"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// entity is one capture collected from the symbol query, before
// qualified-name resolution (which needs every entity in the file to
// compute containment).
type entity struct {
	kind       types.NodeKind
	name       string
	startByte  int
	endByte    int
	startLine  int
	endLine    int
	signature  string
	exported   bool
	isTest     bool
}

// FileResult is everything one file's extraction produced, ready to
// hand to store.FileBatch once node ids are not yet known (edges
// reference nodes by array index via the caller).
type FileResult struct {
	Path        string
	Language    string
	ContentHash types.Fingerprint
	Nodes       []types.Node
	CallSites   []CallSite // source node index -> textual target, resolved by the resolver package
	ParseError  string
}

// CallSite is a call whose target is only known by name until the
// resolver looks it up against the whole-project symbol table.
type CallSite struct {
	SourceIndex int
	TargetName  string
	Line        int
}

// workerState owns one tree-sitter parser and one pair of compiled
// queries per language, lazily built on first use and reused for
// every subsequent file the owning worker processes. A workerState is
// only ever touched by the single worker goroutine that created it,
// so it needs no locking.
type workerState struct {
	languages   map[string]*tree_sitter.Language
	parsers     map[string]*tree_sitter.Parser
	symbolQuery map[string]*tree_sitter.Query
	callQuery   map[string]*tree_sitter.Query
}

func newWorkerState() *workerState {
	return &workerState{
		languages:   map[string]*tree_sitter.Language{},
		parsers:     map[string]*tree_sitter.Parser{},
		symbolQuery: map[string]*tree_sitter.Query{},
		callQuery:   map[string]*tree_sitter.Query{},
	}
}

// close releases every parser and query this worker compiled. Call
// once, when the worker goroutine is shutting down.
func (w *workerState) close() {
	for _, q := range w.symbolQuery {
		q.Close()
	}
	for _, q := range w.callQuery {
		q.Close()
	}
	for _, p := range w.parsers {
		p.Close()
	}
}

func (w *workerState) languageFor(spec *grammarSpec) *tree_sitter.Language {
	if lang, ok := w.languages[spec.name]; ok {
		return lang
	}
	lang := spec.languageFunc()
	w.languages[spec.name] = lang
	return lang
}

func (w *workerState) parserFor(spec *grammarSpec, language *tree_sitter.Language) (*tree_sitter.Parser, error) {
	if p, ok := w.parsers[spec.name]; ok {
		return p, nil
	}
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(language); err != nil {
		return nil, err
	}
	w.parsers[spec.name] = p
	return p, nil
}

func (w *workerState) symbolQueryFor(spec *grammarSpec, language *tree_sitter.Language) (*tree_sitter.Query, error) {
	if q, ok := w.symbolQuery[spec.name]; ok {
		return q, nil
	}
	q, err := tree_sitter.NewQuery(language, spec.symbolQuery)
	if err != nil {
		return nil, err
	}
	w.symbolQuery[spec.name] = q
	return q, nil
}

func (w *workerState) callQueryFor(spec *grammarSpec, language *tree_sitter.Language) (*tree_sitter.Query, error) {
	if spec.callQuery == "" {
		return nil, nil
	}
	if q, ok := w.callQuery[spec.name]; ok {
		return q, nil
	}
	q, err := tree_sitter.NewQuery(language, spec.callQuery)
	if err != nil {
		return nil, err
	}
	w.callQuery[spec.name] = q
	return q, nil
}

// ExtractFile parses content with the grammar registered for path's
// extension and returns its nodes and call sites. An unrecognized
// extension yields the text fallback: one module node, no edges.
// Standalone callers (tests, one-off tooling) get a throwaway
// workerState; the pool instead keeps one per worker goroutine so the
// parser and compiled queries amortise across every file it handles.
func ExtractFile(path string, content []byte, testArtifact bool) FileResult {
	w := newWorkerState()
	defer w.close()
	return w.extractFile(path, content, testArtifact)
}

func (w *workerState) extractFile(path string, content []byte, testArtifact bool) FileResult {
	ext := strings.ToLower(filepath.Ext(path))
	spec, ok := languageByExt(ext)
	if !ok {
		return extractFallback(path, content, testArtifact)
	}

	language := w.languageFor(spec)
	parser, err := w.parserFor(spec, language)
	if err != nil {
		return FileResult{Path: path, Language: spec.name, ContentHash: hasher.HashBytes(content),
			ParseError: "set language: " + err.Error()}
	}

	buf := make([]byte, len(content))
	copy(buf, content)
	tree := parser.Parse(buf, nil)
	if tree == nil {
		return FileResult{Path: path, Language: spec.name, ContentHash: hasher.HashBytes(content),
			ParseError: "parse returned nil tree"}
	}
	defer tree.Close()

	symbolQuery, qErr := w.symbolQueryFor(spec, language)
	var entities []entity
	if qErr == nil {
		entities = runSymbolQuery(spec, symbolQuery, tree, buf)
	}
	nodes := resolveQualifiedNames(path, spec.name, entities, testArtifact)

	var calls []CallSite
	if callQuery, err := w.callQueryFor(spec, language); err == nil && callQuery != nil {
		calls = runCallQuery(callQuery, tree, buf, nodes)
	}

	return FileResult{
		Path:        path,
		Language:    spec.name,
		ContentHash: hasher.HashBytes(content),
		Nodes:       nodes,
		CallSites:   calls,
	}
}

func extractFallback(path string, content []byte, testArtifact bool) FileResult {
	fp := hasher.HashBytes(content)
	lines := strings.Count(string(content), "\n") + 1
	node := types.Node{
		Path:          path,
		Pos:           types.Position{StartByte: 0, EndByte: len(content), StartLine: 1, EndLine: lines},
		Kind:          types.KindModule,
		Name:          filepath.Base(path),
		QualifiedName: path,
		Language:      "text",
		Exported:      true,
		TestArtifact:  testArtifact,
		Fingerprint:   fp,
	}
	return FileResult{Path: path, Language: "text", ContentHash: fp, Nodes: []types.Node{node}}
}

func runSymbolQuery(spec *grammarSpec, query *tree_sitter.Query, tree *tree_sitter.Tree, content []byte) []entity {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := query.CaptureNames()
	matches := qc.Matches(query, tree.RootNode(), content)

	var entities []entity
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		names := map[string]string{}
		var mainNode *tree_sitter.Node
		var mainCapture string
		for _, c := range match.Captures {
			capName := captureNames[c.Index]
			node := c.Node
			if strings.HasSuffix(capName, ".name") {
				names[strings.TrimSuffix(capName, ".name")] = string(content[node.StartByte():node.EndByte()])
				continue
			}
			if kind, ok := spec.captureKind[capName]; ok {
				mainCapture = capName
				mainNode = &node
				_ = kind
			}
		}
		if mainNode == nil {
			continue
		}
		kind := spec.captureKind[mainCapture]
		name := names[mainCapture]
		if name == "" {
			name = string(content[mainNode.StartByte():mainNode.EndByte()])
			if len(name) > 64 {
				name = name[:64]
			}
		}
		start := mainNode.StartPosition()
		end := mainNode.EndPosition()
		entities = append(entities, entity{
			kind:      kind,
			name:      name,
			startByte: int(mainNode.StartByte()),
			endByte:   int(mainNode.EndByte()),
			startLine: int(start.Row) + 1,
			endLine:   int(end.Row) + 1,
			exported:  isExportedName(name, spec.name),
		})
	}
	return entities
}

// resolveQualifiedNames sorts entities by range and assigns each a
// dotted qualified name: the file's base name, then every enclosing
// container (class/struct/interface/module) from outermost in, then
// the entity's own name, matching the data model's dotted-scope
// convention.
func resolveQualifiedNames(path, language string, entities []entity, testArtifact bool) []types.Node {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].startByte != entities[j].startByte {
			return entities[i].startByte < entities[j].startByte
		}
		return entities[i].endByte > entities[j].endByte
	})

	type scopeFrame struct {
		name    string
		endByte int
	}
	var stack []scopeFrame
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	nodes := make([]types.Node, 0, len(entities))
	for _, e := range entities {
		for len(stack) > 0 && e.startByte >= stack[len(stack)-1].endByte {
			stack = stack[:len(stack)-1]
		}

		qualified := base
		for _, f := range stack {
			qualified += "." + f.name
		}
		qualified += "." + e.name

		nodes = append(nodes, types.Node{
			Path:          path,
			Pos:           types.Position{StartByte: e.startByte, EndByte: e.endByte, StartLine: e.startLine, EndLine: e.endLine},
			Kind:          e.kind,
			Name:          e.name,
			QualifiedName: qualified,
			Language:      language,
			Exported:      e.exported,
			TestArtifact:  testArtifact,
		})

		if isContainerKind(e.kind) {
			stack = append(stack, scopeFrame{name: e.name, endByte: e.endByte})
		}
	}

	for i := range nodes {
		nodes[i].Fingerprint = hasher.HashBytes([]byte(nodes[i].QualifiedName + nodes[i].Signature))
	}
	return nodes
}

func isContainerKind(k types.NodeKind) bool {
	switch k {
	case types.KindClass, types.KindStruct, types.KindInterface, types.KindModule:
		return true
	}
	return false
}

func runCallQuery(query *tree_sitter.Query, tree *tree_sitter.Tree, content []byte, nodes []types.Node) []CallSite {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := query.CaptureNames()
	matches := qc.Matches(query, tree.RootNode(), content)

	var calls []CallSite
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		var target string
		var line int
		found := false
		for _, c := range match.Captures {
			capName := captureNames[c.Index]
			if capName == "call.target" {
				target = string(content[c.Node.StartByte():c.Node.EndByte()])
				line = int(c.Node.StartPosition().Row) + 1
				found = true
			}
		}
		if !found || target == "" {
			continue
		}
		sourceIdx := enclosingNodeIndex(nodes, line)
		if sourceIdx < 0 {
			continue
		}
		calls = append(calls, CallSite{SourceIndex: sourceIdx, TargetName: target, Line: line})
	}
	return calls
}

// enclosingNodeIndex finds the innermost function/method whose line
// range contains line, so a call site can be attributed to its caller.
func enclosingNodeIndex(nodes []types.Node, line int) int {
	best := -1
	bestSpan := int(^uint(0) >> 1)
	for i, n := range nodes {
		if n.Kind != types.KindFunction && n.Kind != types.KindMethod {
			continue
		}
		if line < n.Pos.StartLine || line > n.Pos.EndLine {
			continue
		}
		span := n.Pos.EndLine - n.Pos.StartLine
		if span < bestSpan {
			bestSpan = span
			best = i
		}
	}
	return best
}

func isExportedName(name, language string) bool {
	if name == "" {
		return false
	}
	switch language {
	case "go":
		r := name[0]
		return r >= 'A' && r <= 'Z'
	case "python":
		return !strings.HasPrefix(name, "_")
	default:
		return true
	}
}
