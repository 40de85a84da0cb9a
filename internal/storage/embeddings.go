package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/vector"
)

// EmbeddingStore implements vector.Store on the catalog's embeddings table.
type EmbeddingStore struct {
	s *SQLiteStorage
}

// EmbeddingStore returns a vector.Store that shares this catalog's database.
func (s *SQLiteStorage) EmbeddingStore() *EmbeddingStore {
	return &EmbeddingStore{s: s}
}

// Kind returns vector.StoreKindSQLite.
func (e *EmbeddingStore) Kind() vector.StoreKind { return vector.StoreKindSQLite }

// Load reads every row ordered by ordinal and checks it against docs.
func (e *EmbeddingStore) Load(ctx context.Context, docs []*models.Document) ([][]float32, error) {
	rows, err := e.s.db.QueryContext(ctx, `SELECT document_id, vector FROM embeddings ORDER BY ordinal`)
	if err != nil {
		return nil, &vector.StoreError{Op: "load", Path: "embeddings", Err: err}
	}
	defer rows.Close()

	var ids []string
	var vectors [][]float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, &vector.StoreError{Op: "load", Path: "embeddings", Err: err}
		}
		vec, err := vector.DecodeFloat32s(blob)
		if err != nil {
			return nil, &vector.StoreError{Op: "load", Path: "embeddings", Err: err}
		}
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, &vector.StoreError{Op: "load", Path: "embeddings", Err: err}
	}
	if len(vectors) == 0 {
		return nil, &vector.StoreError{Op: "load", Path: "embeddings", Err: vector.ErrNotFound}
	}
	if err := vector.ValidateMatrix(docs, ids, vectors); err != nil {
		return nil, &vector.StoreError{Op: "load", Path: "embeddings", Err: err}
	}
	return vectors, nil
}

// Save replaces all rows in one transaction; a failure leaves the previous rows intact.
func (e *EmbeddingStore) Save(ctx context.Context, docs []*models.Document, vectors [][]float32) error {
	if err := vector.ValidateMatrix(docs, nil, vectors); err != nil {
		return saveError(err)
	}
	tx, err := e.s.db.BeginTx(ctx, nil)
	if err != nil {
		return saveError(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return saveError(err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (ordinal, document_id, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return saveError(err)
	}
	defer stmt.Close()
	for i, vec := range vectors {
		if _, err := stmt.ExecContext(ctx, i, docs[i].ID, vector.EncodeFloat32s(vec)); err != nil {
			return saveError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return saveError(err)
	}
	return nil
}

func saveError(err error) error {
	return &vector.StoreError{Op: "save", Path: "embeddings", Err: fmt.Errorf("%w: %w", vector.ErrSaveFailed, err)}
}
