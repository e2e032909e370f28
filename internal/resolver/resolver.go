// Package resolver binds the textual call/reference targets the
// parser pool emits to live Nodes, using the five-step heuristic
// chain from the component design: local scope, path-alias rewrite,
// import scope, framework route conventions, then an UnresolvedRef
// fallback. None of these heuristics attempt full language-server
// accuracy; they are practical approximations, same as the teacher's
// import resolver.
package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// Store is the subset of internal/store the resolver needs. It is
// declared here, not imported from store, so resolver has no
// dependency on the storage engine's concrete type.
type Store interface {
	NodesByQualifiedName(ctx context.Context, qualifiedName string) ([]types.Node, error)
	ResolveRef(ctx context.Context, refID int64, edge types.Edge) error
	UnresolvedRefsForFiles(ctx context.Context, fileIDs []types.FileID) ([]types.UnresolvedRef, error)
}

// Resolver turns call sites into Edges or UnresolvedRefs.
type Resolver struct {
	pathAliases map[string]string // e.g. "@/" -> "src/"
	routes      []RouteResolver
}

// Option configures a Resolver at construction.
type Option func(*Resolver)

// WithPathAliases registers import-path rewrites applied before the
// import-scope lookup step (step 2 of the algorithm).
func WithPathAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		for k, v := range aliases {
			r.pathAliases[k] = v
		}
	}
}

// WithRouteResolvers adds framework-specific resolvers consulted at
// step 4, after local/alias/import lookups fail.
func WithRouteResolvers(routes ...RouteResolver) Option {
	return func(r *Resolver) { r.routes = append(r.routes, routes...) }
}

// New returns a Resolver with the default route resolvers registered.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		pathAliases: map[string]string{},
		routes:      []RouteResolver{HTTPHandlerResolver{}, DecoratorRouteResolver{}},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Binding is the outcome of resolving one CallSite: either a concrete
// Edge (Resolved true) or the textual target to record as an
// UnresolvedRef (Resolved false).
type Binding struct {
	Resolved bool
	Edge     types.Edge
	Ref      types.UnresolvedRef
}

// ResolveFile attempts to bind every call site in a freshly parsed
// file. nodeIDs is the store-assigned id for parser.FileResult.Nodes
// at the same index (both slices share index order by construction of
// ExtractFile); localNodes is that same slice, used for step 1.
func (r *Resolver) ResolveFile(ctx context.Context, store Store, path string, localNodes []types.Node, nodeIDs []types.NodeID, sites []parser.CallSite) []Binding {
	bindings := make([]Binding, 0, len(sites))
	for _, site := range sites {
		if site.SourceIndex < 0 || site.SourceIndex >= len(nodeIDs) {
			continue
		}
		sourceID := nodeIDs[site.SourceIndex]
		bindings = append(bindings, r.resolveOne(ctx, store, path, localNodes, sourceID, site.TargetName, site.Line))
	}
	return bindings
}

func (r *Resolver) resolveOne(ctx context.Context, store Store, path string, localNodes []types.Node, sourceID types.NodeID, target string, line int) Binding {
	// Step 1: local (same file) resolution by bare name.
	for _, n := range localNodes {
		if n.Name == target {
			return Binding{Resolved: true, Edge: types.Edge{SourceID: sourceID, TargetID: n.ID, Kind: types.EdgeCalls, CallSiteLine: line}}
		}
	}

	// Step 2: path-alias rewrite, then step 3: import/project-wide
	// qualified-name lookup. Both land on the same store query since
	// the store indexes by bare name as well as qualified name.
	candidateName := r.applyAliases(target)
	if nodes, err := store.NodesByQualifiedName(ctx, candidateName); err == nil && len(nodes) > 0 {
		chosen := chooseCandidate(nodes, path)
		return Binding{Resolved: true, Edge: types.Edge{SourceID: sourceID, TargetID: chosen.ID, Kind: types.EdgeCalls, CallSiteLine: line}}
	}

	// Step 4: framework route resolvers.
	for _, route := range r.routes {
		if qn, ok := route.ResolveRoute(path, target); ok {
			if nodes, err := store.NodesByQualifiedName(ctx, qn); err == nil && len(nodes) > 0 {
				chosen := chooseCandidate(nodes, path)
				return Binding{Resolved: true, Edge: types.Edge{SourceID: sourceID, TargetID: chosen.ID, Kind: types.EdgeCalls, CallSiteLine: line}}
			}
		}
	}

	// Step 5: give up, record as unresolved.
	return Binding{Ref: types.UnresolvedRef{SourceID: sourceID, TextualTarget: target}}
}

func (r *Resolver) applyAliases(target string) string {
	for prefix, replacement := range r.pathAliases {
		if strings.HasPrefix(target, prefix) {
			return replacement + strings.TrimPrefix(target, prefix)
		}
	}
	return target
}

// chooseCandidate prefers a node from the same directory as the
// referencing file, then an exported symbol, then the first result,
// mirroring the teacher's same-file/exported/fallback ranking.
func chooseCandidate(nodes []types.Node, fromPath string) types.Node {
	dir := filepath.Dir(fromPath)
	for _, n := range nodes {
		if filepath.Dir(n.Path) == dir {
			return n
		}
	}
	for _, n := range nodes {
		if n.Exported {
			return n
		}
	}
	return nodes[0]
}

// Retry re-attempts previously unresolved refs belonging to the given
// files, per the "not fixed-point" rule: resolution runs again only
// when new files land, never continuously.
func (r *Resolver) Retry(ctx context.Context, store Store, fileIDs []types.FileID) (resolved int, err error) {
	refs, err := store.UnresolvedRefsForFiles(ctx, fileIDs)
	if err != nil {
		return 0, err
	}
	for _, ref := range refs {
		nodes, err := store.NodesByQualifiedName(ctx, r.applyAliases(ref.TextualTarget))
		if err != nil || len(nodes) == 0 {
			continue
		}
		chosen := nodes[0]
		edge := types.Edge{SourceID: ref.SourceID, TargetID: chosen.ID, Kind: types.EdgeCalls}
		if err := store.ResolveRef(ctx, ref.ID, edge); err != nil {
			continue
		}
		resolved++
	}
	return resolved, nil
}
