// Package storage persists the document catalog and, optionally, the embedding matrix in SQLite.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/patsearch/internal/models"
)

// ErrNotFound is returned when a document id is not in the catalog.
var ErrNotFound = errors.New("document not found")

// Catalog stores the ordered patent corpus. Order is significant: it defines corpus
// indices and must survive a round trip.
type Catalog interface {
	// ReplaceDocuments atomically replaces the whole catalog with docs, in order.
	ReplaceDocuments(ctx context.Context, docs []*models.Document) error
	// ListDocuments returns every document in catalog order.
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	// GetDocument returns the first document with the given id.
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	CountDocuments(ctx context.Context) (int64, error)
	Close() error
}
