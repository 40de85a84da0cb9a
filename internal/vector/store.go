package vector

import (
	"context"
	"fmt"

	"github.com/hyperjump/patsearch/internal/models"
)

// StoreKind identifies an embedding persistence backend.
type StoreKind string

const (
	// StoreKindFile persists the matrix as a single binary file.
	StoreKindFile StoreKind = "file"
	// StoreKindSQLite persists rows in the document catalog database.
	StoreKindSQLite StoreKind = "sqlite"
)

// Store loads and saves the embedding matrix for an ordered document list.
// Row i always belongs to docs[i]; a store never reorders either side.
type Store interface {
	// Load returns one vector per document. Errors wrap ErrNotFound when nothing was
	// persisted and ErrShapeMismatch when the stored rows do not match docs.
	Load(ctx context.Context, docs []*models.Document) ([][]float32, error)
	// Save persists vectors for docs. Errors wrap ErrSaveFailed.
	Save(ctx context.Context, docs []*models.Document, vectors [][]float32) error
	// Kind returns the backend identifier.
	Kind() StoreKind
}

// LoadCorpus loads embeddings for docs from store and returns a ready corpus.
func LoadCorpus(ctx context.Context, store Store, docs []*models.Document) (*Corpus, error) {
	vectors, err := store.Load(ctx, docs)
	if err != nil {
		return nil, err
	}
	return NewCorpus(docs).WithEmbeddings(vectors)
}

// SaveCorpus persists the embeddings of a corpus.
func SaveCorpus(ctx context.Context, store Store, corpus *Corpus) error {
	if !corpus.HasEmbeddings() {
		return fmt.Errorf("%w: corpus has no embeddings", ErrSaveFailed)
	}
	return store.Save(ctx, corpus.Documents(), corpus.Vectors())
}

// NewStore creates a file-backed store of the given kind. The sqlite kind needs a database
// handle and is constructed by the storage package instead.
func NewStore(kind string, path string) (Store, error) {
	switch StoreKind(kind) {
	case StoreKindFile, "":
		return NewFileStore(path)
	case StoreKindSQLite:
		return nil, fmt.Errorf("store kind %q must be created from the document catalog", kind)
	default:
		return nil, fmt.Errorf("unknown store kind: %s (supported: file, sqlite)", kind)
	}
}
