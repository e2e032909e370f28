package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// UnresolvedRefsForFiles returns the unresolved refs whose source node
// belongs to one of the given files — the set the resolver re-attempts
// after each indexing pass, since a ref becomes resolvable as soon as
// both sides exist in the store.
func (s *Store) UnresolvedRefsForFiles(ctx context.Context, fileIDs []types.FileID) ([]types.UnresolvedRef, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(fileIDs))
	for i, id := range fileIDs {
		args[i] = id
	}
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT u.id, u.source_id, u.textual_target, u.imports_in_scope, u.created_at
		FROM unresolved_refs u
		JOIN nodes n ON n.id = u.source_id
		WHERE n.file_id IN (`+placeholders(len(fileIDs))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.UnresolvedRef
	for rows.Next() {
		var u types.UnresolvedRef
		var scope string
		if err := rows.Scan(&u.ID, &u.SourceID, &u.TextualTarget, &scope, &u.CreatedAtUnix); err != nil {
			return nil, err
		}
		if scope != "" {
			u.ImportsInScope = strings.Split(scope, ",")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AllUnresolvedRefs returns every unresolved ref in the store — the
// health metric surfaced by the resolver.
func (s *Store) AllUnresolvedRefs(ctx context.Context) ([]types.UnresolvedRef, error) {
	rows, err := s.readDB.QueryContext(ctx,
		"SELECT id, source_id, textual_target, imports_in_scope, created_at FROM unresolved_refs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.UnresolvedRef
	for rows.Next() {
		var u types.UnresolvedRef
		var scope string
		if err := rows.Scan(&u.ID, &u.SourceID, &u.TextualTarget, &scope, &u.CreatedAtUnix); err != nil {
			return nil, err
		}
		if scope != "" {
			u.ImportsInScope = strings.Split(scope, ",")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ResolveRef replaces an UnresolvedRef with a live Edge, inside one
// transaction: the ref row is deleted and the edge inserted together
// so no intermediate state has neither.
func (s *Store) ResolveRef(ctx context.Context, refID int64, edge types.Edge) error {
	return s.WithBatch(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM unresolved_refs WHERE id = ?", refID); err != nil {
			return err
		}
		_, err := tx.StmtContext(ctx, s.stmts.insertEdge).ExecContext(ctx,
			edge.SourceID, edge.TargetID, string(edge.Kind), edge.CallSiteLine)
		return err
	})
}
