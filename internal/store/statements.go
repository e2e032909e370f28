package store

import "database/sql"

// preparedStatements holds every statement the writer issues more than
// once, built once at Open and reused for the lifetime of the Store —
// per the component design, "all statements are prepared once and
// cached".
type preparedStatements struct {
	upsertFile       *sql.Stmt
	deleteFile       *sql.Stmt
	insertNode       *sql.Stmt
	deleteNodesOf    *sql.Stmt
	insertEdge       *sql.Stmt
	insertUnresolved *sql.Stmt
	deleteUnresolved *sql.Stmt
	upsertEmbedding  *sql.Stmt
	getEmbedding     *sql.Stmt
	linkNodeVector   *sql.Stmt
}

func prepareStatements(db *sql.DB) (*preparedStatements, error) {
	p := &preparedStatements{}
	var err error

	prep := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = db.Prepare(query)
	}

	prep(&p.upsertFile, `INSERT INTO files(path, content_hash, language, symbol_count, parse_error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash=excluded.content_hash,
			language=excluded.language,
			symbol_count=excluded.symbol_count,
			parse_error=excluded.parse_error`)

	prep(&p.deleteFile, `DELETE FROM files WHERE path = ?`)

	prep(&p.insertNode, `INSERT INTO nodes(
			file_id, path, start_byte, end_byte, start_line, end_line,
			kind, name, qualified_name, signature, doc, language,
			exported, test_artifact, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prep(&p.deleteNodesOf, `DELETE FROM nodes WHERE file_id = ?`)

	prep(&p.insertEdge, `INSERT INTO edges(source_id, target_id, kind, call_site_line)
		VALUES (?, ?, ?, ?)`)

	prep(&p.insertUnresolved, `INSERT INTO unresolved_refs(source_id, textual_target, imports_in_scope, created_at)
		VALUES (?, ?, ?, ?)`)

	prep(&p.deleteUnresolved, `DELETE FROM unresolved_refs WHERE source_id IN (SELECT id FROM nodes WHERE file_id = ?)`)

	prep(&p.upsertEmbedding, `INSERT INTO embedding_cache(fingerprint, dim, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING`)

	prep(&p.getEmbedding, `SELECT dim, vector FROM embedding_cache WHERE fingerprint = ?`)

	prep(&p.linkNodeVector, `INSERT INTO node_vectors(node_id, fingerprint) VALUES (?, ?)
		ON CONFLICT(node_id) DO UPDATE SET fingerprint=excluded.fingerprint`)

	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *preparedStatements) close() error {
	stmts := []*sql.Stmt{
		p.upsertFile, p.deleteFile, p.insertNode, p.deleteNodesOf,
		p.insertEdge, p.insertUnresolved, p.deleteUnresolved,
		p.upsertEmbedding, p.getEmbedding, p.linkNodeVector,
	}
	for _, s := range stmts {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}
