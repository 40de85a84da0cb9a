package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/patsearch/internal/embedding"
	"github.com/hyperjump/patsearch/internal/filter"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/ranking"
	"github.com/hyperjump/patsearch/internal/vector"
)

// ErrDocumentNotFound is returned when no corpus document has the requested id.
var ErrDocumentNotFound = errors.New("document not found")

// Resolver answers "documents similar to document X" queries.
type Resolver struct {
	ranker *ranking.Engine
	// embedder, when set, re-embeds the reference document's searchable text instead of
	// reusing its stored vector.
	embedder embedding.Embedder
}

// NewResolver creates a resolver over ranker. A nil embedder uses stored vectors.
func NewResolver(ranker *ranking.Engine, embedder embedding.Embedder) *Resolver {
	return &Resolver{ranker: ranker, embedder: embedder}
}

// ByDocumentID ranks the corpus against document id and returns up to topK results that do
// not carry the reference id. The first document with a matching id is the reference.
func (r *Resolver) ByDocumentID(ctx context.Context, corpus *vector.Corpus, id string, topK int) ([]*models.SearchResult, error) {
	if corpus == nil || !corpus.HasEmbeddings() {
		return nil, ranking.ErrNoEmbeddings
	}
	idx, ok := corpus.IndexOf(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if topK <= 0 {
		return []*models.SearchResult{}, nil
	}

	query := corpus.Vector(idx)
	if r.embedder != nil {
		vec, err := r.embedder.Embed(ctx, corpus.Document(idx).SearchableText)
		if err != nil {
			return nil, fmt.Errorf("embed reference document: %w", err)
		}
		query = vec
	}

	// One extra slot absorbs the reference document itself.
	results, err := r.ranker.Search(ctx, corpus, query, filter.Unrestricted(), topK+1)
	if err != nil {
		return nil, err
	}
	kept := results[:0]
	for _, res := range results {
		if res.Document.ID == id {
			continue
		}
		kept = append(kept, res)
	}
	if len(kept) > topK {
		kept = kept[:topK]
	}
	for i, res := range kept {
		res.Rank = i + 1
	}
	return kept, nil
}
