package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/patsearch/internal/models"
)

// SQLiteStorage implements Catalog using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Writes are serialized; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		ordinal INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL,
		claims TEXT NOT NULL,
		description TEXT NOT NULL,
		classification_code TEXT NOT NULL,
		citation TEXT NOT NULL,
		searchable_text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_id ON documents(id);

	CREATE TABLE IF NOT EXISTS embeddings (
		ordinal INTEGER PRIMARY KEY,
		document_id TEXT NOT NULL,
		vector BLOB NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceDocuments replaces the catalog in one transaction. Stored embeddings are dropped
// as well, since their rows no longer line up with the new documents.
func (s *SQLiteStorage) ReplaceDocuments(ctx context.Context, docs []*models.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("failed to clear embeddings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (ordinal, id, title, abstract, claims, description, classification_code, citation, searchable_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		claims, err := json.Marshal(nonNil(doc.Claims))
		if err != nil {
			return fmt.Errorf("failed to marshal claims: %w", err)
		}
		description, err := json.Marshal(nonNil(doc.Description))
		if err != nil {
			return fmt.Errorf("failed to marshal description: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, i, doc.ID, doc.Title, doc.Abstract, string(claims), string(description),
			doc.ClassificationCode, doc.Citation, doc.SearchableText); err != nil {
			return fmt.Errorf("failed to insert document %q: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}

const selectDocument = `SELECT id, title, abstract, claims, description, classification_code, citation, searchable_text FROM documents`

// ListDocuments returns all documents ordered by ordinal.
func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocument+` ORDER BY ordinal`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetDocument returns the lowest-ordinal document with the given id.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocument+` WHERE id = ? ORDER BY ordinal LIMIT 1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, err
}

// CountDocuments returns the number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (*models.Document, error) {
	var doc models.Document
	var claims, description string
	if err := sc.Scan(&doc.ID, &doc.Title, &doc.Abstract, &claims, &description,
		&doc.ClassificationCode, &doc.Citation, &doc.SearchableText); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(claims), &doc.Claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claims of %q: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(description), &doc.Description); err != nil {
		return nil, fmt.Errorf("failed to unmarshal description of %q: %w", doc.ID, err)
	}
	if len(doc.Claims) == 0 {
		doc.Claims = nil
	}
	if len(doc.Description) == 0 {
		doc.Description = nil
	}
	return &doc, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
