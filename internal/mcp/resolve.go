package mcp

import (
	"context"

	"github.com/codegraph-dev/codegraph/internal/cgerrors"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// resolveSymbol looks up a node by qualified name, the identifier
// every call-graph and analysis tool accepts from a client rather than
// requiring raw numeric ids. The first match wins; qualified names are
// expected to be unique in practice (spec.md's dotted-containment
// scheme), so ambiguity is not reported specially.
func (s *Server) resolveSymbol(ctx context.Context, qualifiedName string) (types.NodeID, error) {
	if qualifiedName == "" {
		return 0, cgerrors.InvalidInputf("resolve_symbol", "symbol is required")
	}
	nodes, err := s.store.NodesByQualifiedName(ctx, qualifiedName)
	if err != nil {
		return 0, cgerrors.StoreErrorf("resolve_symbol", err)
	}
	if len(nodes) == 0 {
		return 0, cgerrors.NotFoundf("resolve_symbol", qualifiedName, "no symbol named %q", qualifiedName)
	}
	return nodes[0].ID, nil
}
