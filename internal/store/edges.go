package store

import (
	"context"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// OutgoingEdges returns every edge whose source is id, optionally
// filtered to a set of kinds (nil/empty means all kinds). Graph
// traversal builds its adjacency on the fly from calls like this —
// the full graph is never materialized in memory.
func (s *Store) OutgoingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error) {
	return s.edgesBySide(ctx, "source_id", id, kinds)
}

// IncomingEdges returns every edge whose target is id.
func (s *Store) IncomingEdges(ctx context.Context, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error) {
	return s.edgesBySide(ctx, "target_id", id, kinds)
}

func (s *Store) edgesBySide(ctx context.Context, column string, id types.NodeID, kinds []types.EdgeKind) ([]types.Edge, error) {
	query := "SELECT id, source_id, target_id, kind, call_site_line FROM edges WHERE " + column + " = ?"
	args := []any{id}
	if len(kinds) > 0 {
		query += " AND kind IN (" + placeholders(len(kinds)) + ")"
		for _, k := range kinds {
			args = append(args, string(k))
		}
	}
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Edge
	for rows.Next() {
		var e types.Edge
		var kind string
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &kind, &e.CallSiteLine); err != nil {
			return nil, err
		}
		e.Kind = types.EdgeKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllNodeIDs returns every live node id, used by PageRank and Tarjan
// to seed their adjacency build without an in-memory owning graph.
func (s *Store) AllNodeIDs(ctx context.Context) ([]types.NodeID, error) {
	rows, err := s.readDB.QueryContext(ctx, "SELECT id FROM nodes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.NodeID
	for rows.Next() {
		var id types.NodeID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AllEdges returns every edge of the given kinds, used to build a
// whole-graph adjacency for PageRank/Tarjan in one pass.
func (s *Store) AllEdges(ctx context.Context, kinds []types.EdgeKind) ([]types.Edge, error) {
	query := "SELECT id, source_id, target_id, kind, call_site_line FROM edges"
	args := []any{}
	if len(kinds) > 0 {
		query += " WHERE kind IN (" + placeholders(len(kinds)) + ")"
		for _, k := range kinds {
			args = append(args, string(k))
		}
	}
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Edge
	for rows.Next() {
		var e types.Edge
		var kind string
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &kind, &e.CallSiteLine); err != nil {
			return nil, err
		}
		e.Kind = types.EdgeKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
