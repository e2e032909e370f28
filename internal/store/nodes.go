package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// FileBatch is everything one file's re-extraction produces: the file
// record, the nodes it owns, the edges among them (or to other
// already-known nodes) and any refs the resolver could not bind.
// WriteFileBatch commits all of it atomically, satisfying the
// per-file ordering guarantee: after the batch, either all of a
// file's nodes/edges reflect the new content or none do.
type FileBatch struct {
	File      types.FileRecord
	Nodes     []types.Node
	Edges     []types.Edge
	Unresolved []types.UnresolvedRef
}

// WriteFileBatch deletes the file's prior nodes (cascading to edges on
// either endpoint and to its unresolved refs) and inserts the fresh
// extraction, all inside one transaction.
func (s *Store) WriteFileBatch(ctx context.Context, b FileBatch) (types.FileID, []types.NodeID, error) {
	var fileID types.FileID
	nodeIDs := make([]types.NodeID, len(b.Nodes))

	err := s.WithBatch(ctx, func(tx *sql.Tx) error {
		res, err := tx.StmtContext(ctx, s.stmts.upsertFile).ExecContext(ctx,
			b.File.Path, b.File.ContentHash.String(), b.File.Language, b.File.SymbolCount, b.File.ParseError)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if id == 0 {
			// ON CONFLICT UPDATE path: fetch the existing row id.
			row := tx.QueryRowContext(ctx, "SELECT id FROM files WHERE path = ?", b.File.Path)
			if err := row.Scan(&id); err != nil {
				return err
			}
		}
		fileID = types.FileID(id)

		if _, err := tx.StmtContext(ctx, s.stmts.deleteUnresolved).ExecContext(ctx, fileID); err != nil {
			return err
		}
		if _, err := tx.StmtContext(ctx, s.stmts.deleteNodesOf).ExecContext(ctx, fileID); err != nil {
			return err
		}

		insertNode := tx.StmtContext(ctx, s.stmts.insertNode)
		for i, n := range b.Nodes {
			res, err := insertNode.ExecContext(ctx,
				fileID, n.Path, n.Pos.StartByte, n.Pos.EndByte, n.Pos.StartLine, n.Pos.EndLine,
				string(n.Kind), n.Name, n.QualifiedName, n.Signature, n.Doc, n.Language,
				boolToInt(n.Exported), boolToInt(n.TestArtifact), n.Fingerprint.String())
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			nodeIDs[i] = types.NodeID(id)
		}

		insertEdge := tx.StmtContext(ctx, s.stmts.insertEdge)
		for _, e := range b.Edges {
			if _, err := insertEdge.ExecContext(ctx, e.SourceID, e.TargetID, string(e.Kind), e.CallSiteLine); err != nil {
				return err
			}
		}

		insertUnresolved := tx.StmtContext(ctx, s.stmts.insertUnresolved)
		for _, u := range b.Unresolved {
			if _, err := insertUnresolved.ExecContext(ctx, u.SourceID, u.TextualTarget,
				joinScope(u.ImportsInScope), time.Now().Unix()); err != nil {
				return err
			}
		}
		return nil
	})
	return fileID, nodeIDs, err
}

// DeleteFile removes a file and, via ON DELETE CASCADE, all of its
// nodes and every edge touching them. No live edge can be left with a
// missing endpoint afterward.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	return s.WithBatch(ctx, func(tx *sql.Tx) error {
		_, err := tx.StmtContext(ctx, s.stmts.deleteFile).ExecContext(ctx, path)
		return err
	})
}

// WriteEdges inserts resolved edges and unresolved refs without
// touching the files/nodes tables. Indexing calls this as a second
// pass after WriteFileBatch has assigned node ids and the resolver has
// bound call sites against them (including sites targeting nodes in
// other, already-committed files): re-running WriteFileBatch here
// would delete and reassign this file's node ids, stranding any edge
// another file's pass already built pointing at the old ids.
func (s *Store) WriteEdges(ctx context.Context, edges []types.Edge, unresolved []types.UnresolvedRef) error {
	return s.WithBatch(ctx, func(tx *sql.Tx) error {
		insertEdge := tx.StmtContext(ctx, s.stmts.insertEdge)
		for _, e := range edges {
			if _, err := insertEdge.ExecContext(ctx, e.SourceID, e.TargetID, string(e.Kind), e.CallSiteLine); err != nil {
				return err
			}
		}
		insertUnresolved := tx.StmtContext(ctx, s.stmts.insertUnresolved)
		for _, u := range unresolved {
			if _, err := insertUnresolved.ExecContext(ctx, u.SourceID, u.TextualTarget,
				joinScope(u.ImportsInScope), time.Now().Unix()); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetFileByPath returns the stored record for path, or
// sql.ErrNoRows-wrapping nil if it has never been indexed.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*types.FileRecord, error) {
	row := s.readDB.QueryRowContext(ctx,
		"SELECT id, path, content_hash, language, symbol_count, parse_error FROM files WHERE path = ?", path)
	var fr types.FileRecord
	var hash string
	if err := row.Scan(&fr.ID, &fr.Path, &hash, &fr.Language, &fr.SymbolCount, &fr.ParseError); err != nil {
		return nil, err
	}
	fr.ContentHash = parseFingerprint(hash)
	return &fr, nil
}

// GetNode loads one node by id.
func (s *Store) GetNode(ctx context.Context, id types.NodeID) (*types.Node, error) {
	row := s.readDB.QueryRowContext(ctx, nodeSelectColumns+" WHERE id = ?", id)
	return scanNode(row)
}

const nodeSelectColumns = `SELECT id, file_id, path, start_byte, end_byte, start_line, end_line,
	kind, name, qualified_name, signature, doc, language, exported, test_artifact, fingerprint FROM nodes`

func scanNode(row *sql.Row) (*types.Node, error) {
	var n types.Node
	var kind, hash string
	var exported, testArtifact int
	if err := row.Scan(&n.ID, &n.FileID, &n.Path, &n.Pos.StartByte, &n.Pos.EndByte, &n.Pos.StartLine, &n.Pos.EndLine,
		&kind, &n.Name, &n.QualifiedName, &n.Signature, &n.Doc, &n.Language, &exported, &testArtifact, &hash); err != nil {
		return nil, err
	}
	n.Kind = types.NodeKind(kind)
	n.Exported = exported != 0
	n.TestArtifact = testArtifact != 0
	n.Fingerprint = parseFingerprint(hash)
	return &n, nil
}

// NodesByQualifiedName finds every node whose qualified name or bare
// name exactly equals qualifiedName, across all files — used to locate
// the target of callers/callees/impact queries by name.
func (s *Store) NodesByQualifiedName(ctx context.Context, qualifiedName string) ([]types.Node, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT id, file_id, path, start_byte, end_byte, start_line, end_line,
			kind, name, qualified_name, signature, doc, language, exported, test_artifact, fingerprint
		 FROM nodes WHERE qualified_name = ? OR name = ?`, qualifiedName, qualifiedName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Node
	for rows.Next() {
		var n types.Node
		var kind, hash string
		var exported, testArtifact int
		if err := rows.Scan(&n.ID, &n.FileID, &n.Path, &n.Pos.StartByte, &n.Pos.EndByte, &n.Pos.StartLine, &n.Pos.EndLine,
			&kind, &n.Name, &n.QualifiedName, &n.Signature, &n.Doc, &n.Language, &exported, &testArtifact, &hash); err != nil {
			return nil, err
		}
		n.Kind = types.NodeKind(kind)
		n.Exported = exported != 0
		n.TestArtifact = testArtifact != 0
		n.Fingerprint = parseFingerprint(hash)
		out = append(out, n)
	}
	return out, rows.Err()
}

// NodesByFileID returns every node declared in one file, ordered by
// start byte — used to find sibling declarations of a node without
// re-parsing the file.
func (s *Store) NodesByFileID(ctx context.Context, fileID types.FileID) ([]types.Node, error) {
	rows, err := s.readDB.QueryContext(ctx, nodeSelectColumns+" WHERE file_id = ? ORDER BY start_byte", fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Node
	for rows.Next() {
		var n types.Node
		var kind, hash string
		var exported, testArtifact int
		if err := rows.Scan(&n.ID, &n.FileID, &n.Path, &n.Pos.StartByte, &n.Pos.EndByte, &n.Pos.StartLine, &n.Pos.EndLine,
			&kind, &n.Name, &n.QualifiedName, &n.Signature, &n.Doc, &n.Language, &exported, &testArtifact, &hash); err != nil {
			return nil, err
		}
		n.Kind = types.NodeKind(kind)
		n.Exported = exported != 0
		n.TestArtifact = testArtifact != 0
		n.Fingerprint = parseFingerprint(hash)
		out = append(out, n)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinScope(scope []string) string {
	out := ""
	for i, s := range scope {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

func parseFingerprint(hexStr string) types.Fingerprint {
	var fp types.Fingerprint
	decoded, err := hex.DecodeString(hexStr)
	if err != nil || len(decoded) != len(fp) {
		return fp
	}
	copy(fp[:], decoded)
	return fp
}
