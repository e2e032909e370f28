package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps one SQLite database file with a single serialized writer
// connection and a separate read-only connection pool, per the
// concurrency model: the embedded engine permits one writer, reads may
// be concurrent on separate connections.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
	stmts   *preparedStatements
}

// Open opens (or creates) the database at dbPath, applies pragmas,
// runs pending migrations and prepares the statement cache.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := writeDB.ExecContext(context.Background(), pragma); err != nil {
			_ = writeDB.Close()
			return nil, fmt.Errorf("apply pragma %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(writeDB); err != nil {
		_ = writeDB.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	if _, err := readDB.ExecContext(context.Background(), "PRAGMA query_only=ON;"); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("apply read-only pragma: %w", err)
	}

	s := &Store{writeDB: writeDB, readDB: readDB}
	stmts, err := prepareStatements(writeDB)
	if err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	s.stmts = stmts
	return s, nil
}

// Close releases both connections.
func (s *Store) Close() error {
	if err := s.stmts.close(); err != nil {
		return err
	}
	if err := s.readDB.Close(); err != nil {
		return err
	}
	return s.writeDB.Close()
}

// ReadDB exposes the read-only connection pool for packages that issue
// their own ad-hoc queries (retrieval, graph traversal).
func (s *Store) ReadDB() *sql.DB { return s.readDB }

// WithBatch runs fn inside one write transaction. If fn returns an
// error the whole batch rolls back, leaving prior state intact, per
// the failure semantics in the component design.
func (s *Store) WithBatch(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
