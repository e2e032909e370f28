// Package store is codegraph's durable relational+FTS+vector store: a
// single local SQLite database holding nodes, edges, file hashes,
// unresolved refs and the embedding cache, plus a full-text index over
// node name/qualified_name/signature/doc/path with the per-column
// weights the retrieval engine applies at query time.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);`

// migrations is the ordered, monotonic list of schema changes. Never
// edit an existing entry — append a new one.
var migrations = []func(tx *sql.Tx) error{
	migrateV0,
}

func migrateV0(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			content_hash TEXT NOT NULL,
			language TEXT DEFAULT '',
			symbol_count INTEGER DEFAULT 0,
			parse_error TEXT DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id INTEGER NOT NULL,
			path TEXT NOT NULL,
			start_byte INTEGER NOT NULL,
			end_byte INTEGER NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			qualified_name TEXT NOT NULL,
			signature TEXT DEFAULT '',
			doc TEXT DEFAULT '',
			language TEXT DEFAULT '',
			exported INTEGER DEFAULT 0,
			test_artifact INTEGER DEFAULT 0,
			fingerprint TEXT DEFAULT '',
			FOREIGN KEY(file_id) REFERENCES files(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(file_id);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_qualified_name ON nodes(qualified_name);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			name,
			qualified_name,
			signature,
			doc,
			path,
			content='nodes',
			content_rowid='id',
			tokenize="unicode61 tokenchars '_.:@#$-'"
		);`,
		`CREATE TRIGGER IF NOT EXISTS nodes_ai AFTER INSERT ON nodes BEGIN
			INSERT INTO nodes_fts(rowid, name, qualified_name, signature, doc, path)
			VALUES (new.id, new.name, new.qualified_name, new.signature, new.doc, new.path);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS nodes_ad AFTER DELETE ON nodes BEGIN
			INSERT INTO nodes_fts(nodes_fts, rowid, name, qualified_name, signature, doc, path)
			VALUES ('delete', old.id, old.name, old.qualified_name, old.signature, old.doc, old.path);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS nodes_au AFTER UPDATE ON nodes BEGIN
			INSERT INTO nodes_fts(nodes_fts, rowid, name, qualified_name, signature, doc, path)
			VALUES ('delete', old.id, old.name, old.qualified_name, old.signature, old.doc, old.path);
			INSERT INTO nodes_fts(rowid, name, qualified_name, signature, doc, path)
			VALUES (new.id, new.name, new.qualified_name, new.signature, new.doc, new.path);
		END;`,

		`CREATE TABLE IF NOT EXISTS edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id INTEGER NOT NULL,
			target_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			call_site_line INTEGER DEFAULT 0,
			FOREIGN KEY(source_id) REFERENCES nodes(id) ON DELETE CASCADE,
			FOREIGN KEY(target_id) REFERENCES nodes(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_kind ON edges(kind);`,

		`CREATE TABLE IF NOT EXISTS unresolved_refs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id INTEGER NOT NULL,
			textual_target TEXT NOT NULL,
			imports_in_scope TEXT DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY(source_id) REFERENCES nodes(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_unresolved_source ON unresolved_refs(source_id);`,

		`CREATE TABLE IF NOT EXISTS embedding_cache (
			fingerprint TEXT PRIMARY KEY,
			dim INTEGER NOT NULL,
			vector BLOB NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS node_vectors (
			node_id INTEGER PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			FOREIGN KEY(node_id) REFERENCES nodes(id) ON DELETE CASCADE
		);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.ExecContext(context.Background(), schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	row := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for v := current + 1; v < len(migrations); v++ {
		if err := runMigration(db, v); err != nil {
			return fmt.Errorf("run migration %d: %w", v, err)
		}
	}
	return nil
}

func runMigration(db *sql.DB, version int) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := migrations[version](tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(context.Background(),
		"INSERT INTO schema_version(version, applied_at) VALUES (?, datetime('now'))", version); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
