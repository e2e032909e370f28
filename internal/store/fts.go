package store

import (
	"context"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// KeywordHit is one BM25-ranked match from the full-text index. Score
// is SQLite's bm25() output, already negated so that higher is better
// (bm25() itself returns smaller-is-better weights).
type KeywordHit struct {
	Node  types.Node
	Score float64
}

// bm25 column weights, in nodes_fts column order: name, qualified_name,
// signature, doc, path. Matches in the symbol name count far more than
// matches in the doc string or path.
const (
	weightName          = 10.0
	weightQualifiedName = 8.0
	weightSignature     = 5.0
	weightDoc           = 3.0
	weightPath          = 1.0
)

// KeywordSearch runs query against the FTS5 index and returns the top
// limit nodes ranked by weighted BM25 score, best first. query is
// passed through FTS5's MATCH syntax as-is; callers (queryexpand) are
// responsible for escaping or structuring it.
func (s *Store) KeywordSearch(ctx context.Context, query string, limit int) ([]KeywordHit, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT n.id, n.file_id, n.path, n.start_byte, n.end_byte, n.start_line, n.end_line,
			n.kind, n.name, n.qualified_name, n.signature, n.doc, n.language,
			n.exported, n.test_artifact, n.fingerprint,
			bm25(nodes_fts, ?, ?, ?, ?, ?) AS rank
		FROM nodes_fts
		JOIN nodes n ON n.id = nodes_fts.rowid
		WHERE nodes_fts MATCH ?
		ORDER BY rank
		LIMIT ?`,
		weightName, weightQualifiedName, weightSignature, weightDoc, weightPath,
		query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KeywordHit
	for rows.Next() {
		var n types.Node
		var kind, hash string
		var exported, testArtifact int
		var rank float64
		if err := rows.Scan(&n.ID, &n.FileID, &n.Path, &n.Pos.StartByte, &n.Pos.EndByte, &n.Pos.StartLine, &n.Pos.EndLine,
			&kind, &n.Name, &n.QualifiedName, &n.Signature, &n.Doc, &n.Language,
			&exported, &testArtifact, &hash, &rank); err != nil {
			return nil, err
		}
		n.Kind = types.NodeKind(kind)
		n.Exported = exported != 0
		n.TestArtifact = testArtifact != 0
		n.Fingerprint = parseFingerprint(hash)
		// bm25() is smaller-is-better; negate so Score follows the
		// "higher ranks first" convention used by the rest of retrieval.
		out = append(out, KeywordHit{Node: n, Score: -rank})
	}
	return out, rows.Err()
}
