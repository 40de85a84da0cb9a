package vector

import (
	"fmt"

	"github.com/hyperjump/patsearch/internal/models"
)

// Corpus is an ordered, read-only sequence of documents and (optionally) their embeddings.
// Index i joins document i with vector i. A Corpus is never mutated after construction, so
// any number of goroutines may read it without locking.
type Corpus struct {
	docs    []*models.Document
	vectors [][]float32
	norms   []float64
	dims    int
}

// NewCorpus returns a corpus over docs with no embeddings yet. The slice is copied; the
// documents themselves are shared and must not be mutated by the caller afterwards.
func NewCorpus(docs []*models.Document) *Corpus {
	return &Corpus{docs: append([]*models.Document(nil), docs...)}
}

// WithEmbeddings returns a new corpus with vectors attached. The receiver is left unchanged,
// so a failed commit never leaves a half-embedded corpus behind.
func (c *Corpus) WithEmbeddings(vectors [][]float32) (*Corpus, error) {
	if err := ValidateMatrix(c.docs, nil, vectors); err != nil {
		return nil, err
	}
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	next := &Corpus{
		docs:    c.docs,
		vectors: make([][]float32, len(vectors)),
		norms:   make([]float64, len(vectors)),
		dims:    dims,
	}
	for i, v := range vectors {
		next.vectors[i] = append([]float32(nil), v...)
		next.norms[i] = L2Norm(v)
	}
	return next, nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// HasEmbeddings reports whether vectors have been committed.
func (c *Corpus) HasEmbeddings() bool { return c.vectors != nil }

// Dimensions returns the embedding dimensionality, or 0 without embeddings.
func (c *Corpus) Dimensions() int { return c.dims }

// Document returns the document at index i.
func (c *Corpus) Document(i int) *models.Document { return c.docs[i] }

// Documents returns the documents in corpus order.
func (c *Corpus) Documents() []*models.Document {
	return append([]*models.Document(nil), c.docs...)
}

// Vector returns the embedding at index i. Callers must not modify it.
func (c *Corpus) Vector(i int) []float32 { return c.vectors[i] }

// Norm returns the precomputed L2 norm of vector i.
func (c *Corpus) Norm(i int) float64 { return c.norms[i] }

// Vectors returns the embedding rows in corpus order. Callers must not modify them.
func (c *Corpus) Vectors() [][]float32 { return c.vectors }

// IndexOf returns the index of the first document with the given id.
func (c *Corpus) IndexOf(id string) (int, bool) {
	for i, d := range c.docs {
		if d.ID == id {
			return i, true
		}
	}
	return -1, false
}

// DuplicateIDs returns, in first-seen order, every id carried by more than one document.
// Lookups by id resolve to the first of them.
func (c *Corpus) DuplicateIDs() []string {
	seen := make(map[string]int, len(c.docs))
	var dups []string
	for _, d := range c.docs {
		seen[d.ID]++
		if seen[d.ID] == 2 {
			dups = append(dups, d.ID)
		}
	}
	return dups
}

// Texts returns every document's searchable text in corpus order.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.docs))
	for i, d := range c.docs {
		texts[i] = d.SearchableText
	}
	return texts
}

// ValidateMatrix checks that vectors line up with docs: one row per document and a single
// dimensionality. When ids is non-nil, row i must also carry the id of document i.
func ValidateMatrix(docs []*models.Document, ids []string, vectors [][]float32) error {
	if len(vectors) != len(docs) {
		return fmt.Errorf("%w: %d rows for %d documents", ErrShapeMismatch, len(vectors), len(docs))
	}
	if ids != nil && len(ids) != len(docs) {
		return fmt.Errorf("%w: %d row ids for %d documents", ErrShapeMismatch, len(ids), len(docs))
	}
	dims := -1
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: row %d is empty", ErrShapeMismatch, i)
		}
		if dims == -1 {
			dims = len(v)
		} else if len(v) != dims {
			return fmt.Errorf("%w: row %d has %d dimensions, expected %d", ErrShapeMismatch, i, len(v), dims)
		}
		if ids != nil && ids[i] != docs[i].ID {
			return fmt.Errorf("%w: row %d belongs to %q, document is %q", ErrShapeMismatch, i, ids[i], docs[i].ID)
		}
	}
	return nil
}
