package store

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/codegraph-dev/codegraph/internal/types"
)

// GetEmbedding returns the cached vector for fingerprint, or ok=false
// if it has never been computed — the Node↔vector join is many-to-one,
// so a miss here is simply "not embedded yet", not an error.
func (s *Store) GetEmbedding(ctx context.Context, fp types.Fingerprint) (vec []float32, ok bool, err error) {
	row := s.readDB.QueryRowContext(ctx, "SELECT dim, vector FROM embedding_cache WHERE fingerprint = ?", fp.String())
	var dim int
	var blob []byte
	if err := row.Scan(&dim, &blob); err != nil {
		return nil, false, nil
	}
	return decodeVector(blob, dim), true, nil
}

// PutEmbedding caches a vector under its content fingerprint. A
// fingerprint already present is left untouched (INSERT OR IGNORE
// semantics), matching the single-flight cache's "first writer wins"
// contract.
func (s *Store) PutEmbedding(ctx context.Context, fp types.Fingerprint, vec []float32) error {
	_, err := s.stmts.upsertEmbedding.ExecContext(ctx, fp.String(), len(vec), encodeVector(vec))
	return err
}

// LinkNodeVector records which fingerprint's embedding a node uses. A
// node without a row here is simply absent from semantic results,
// never a broken link, per the vector-index invariant.
func (s *Store) LinkNodeVector(ctx context.Context, node types.NodeID, fp types.Fingerprint) error {
	_, err := s.stmts.linkNodeVector.ExecContext(ctx, node, fp.String())
	return err
}

// AllNodeVectors returns every (node id, vector) pair currently
// indexed, for the brute-force kNN scan.
func (s *Store) AllNodeVectors(ctx context.Context) (map[types.NodeID][]float32, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT nv.node_id, e.dim, e.vector
		FROM node_vectors nv
		JOIN embedding_cache e ON e.fingerprint = nv.fingerprint`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[types.NodeID][]float32{}
	for rows.Next() {
		var id types.NodeID
		var dim int
		var blob []byte
		if err := rows.Scan(&id, &dim, &blob); err != nil {
			return nil, err
		}
		out[id] = decodeVector(blob, dim)
	}
	return out, rows.Err()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte, dim int) []float32 {
	out := make([]float32, dim)
	for i := 0; i < dim && (i+1)*4 <= len(buf); i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
