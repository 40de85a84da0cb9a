// Package search composes filtering, ranking, and document lookup into the public search operations.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/embedding"
	"github.com/hyperjump/patsearch/internal/filter"
	"github.com/hyperjump/patsearch/internal/metrics"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/ranking"
	"github.com/hyperjump/patsearch/internal/vector"
)

// ErrNoEmbedder is returned by Query when the engine was built without an embedder.
var ErrNoEmbedder = errors.New("no embedder configured")

// Engine runs text and document searches against one immutable corpus. It is safe for
// concurrent use.
type Engine struct {
	corpus         *vector.Corpus
	filters        *filter.Engine
	ranker         *ranking.Engine
	resolver       *Resolver
	embedder       embedding.Embedder
	reembedSimilar bool
	logger         *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmbedder sets the embedder used by Query.
func WithEmbedder(e embedding.Embedder) Option {
	return func(eng *Engine) { eng.embedder = e }
}

// WithFilterEngine replaces the default filter engine (e.g. to enable keyword predicates).
func WithFilterEngine(f *filter.Engine) Option {
	return func(eng *Engine) { eng.filters = f }
}

// WithRanker replaces the default ranking engine.
func WithRanker(r *ranking.Engine) Option {
	return func(eng *Engine) { eng.ranker = r }
}

// WithReembedSimilar makes document searches re-embed the reference document's text.
func WithReembedSimilar(enabled bool) Option {
	return func(eng *Engine) { eng.reembedSimilar = enabled }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// NewEngine creates a search engine over corpus.
func NewEngine(corpus *vector.Corpus, opts ...Option) *Engine {
	e := &Engine{corpus: corpus, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.filters == nil {
		e.filters = filter.NewEngine(filter.WithLogger(e.logger))
	}
	if e.ranker == nil {
		e.ranker = ranking.NewEngine(nil, ranking.WithLogger(e.logger))
	}
	var reembed embedding.Embedder
	if e.reembedSimilar {
		reembed = e.embedder
	}
	e.resolver = NewResolver(e.ranker, reembed)
	if corpus != nil {
		metrics.CorpusDocuments.Set(float64(corpus.Len()))
		if dups := corpus.DuplicateIDs(); len(dups) > 0 {
			e.logger.Warn("corpus has duplicate document ids; lookups use the first occurrence",
				zap.Int("ids", len(dups)),
				zap.Strings("sample", dups[:min(len(dups), 5)]),
			)
		}
	}
	return e
}

// Corpus returns the corpus the engine searches.
func (e *Engine) Corpus() *vector.Corpus { return e.corpus }

// TextSearch ranks documents admitted by spec against an already-embedded query.
func (e *Engine) TextSearch(ctx context.Context, query []float32, topK int, spec models.FilterSpec) ([]*models.SearchResult, error) {
	start := time.Now()
	results, err := e.textSearch(ctx, query, topK, spec)
	e.observe("text", start, results, err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("text search",
		zap.Int("top_k", topK),
		zap.Bool("filtered", !spec.Normalize().IsEmpty()),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

func (e *Engine) textSearch(ctx context.Context, query []float32, topK int, spec models.FilterSpec) ([]*models.SearchResult, error) {
	if e.corpus == nil || !e.corpus.HasEmbeddings() {
		return nil, ranking.ErrNoEmbeddings
	}
	admissible, err := e.filters.Apply(ctx, e.corpus, spec)
	if err != nil {
		return nil, err
	}
	return e.ranker.Search(ctx, e.corpus, query, admissible, topK)
}

// DocumentSearch returns up to topK documents most similar to document id, excluding it.
func (e *Engine) DocumentSearch(ctx context.Context, id string, topK int) ([]*models.SearchResult, error) {
	start := time.Now()
	results, err := e.resolver.ByDocumentID(ctx, e.corpus, id, topK)
	e.observe("document", start, results, err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("document search",
		zap.String("document_id", id),
		zap.Int("top_k", topK),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// Statistics aggregates the similarity scores of results.
func (e *Engine) Statistics(results []*models.SearchResult) models.Statistics {
	return ComputeStatistics(results)
}

// Query embeds text and runs TextSearch, returning a response with statistics and timing.
func (e *Engine) Query(ctx context.Context, text string, topK int, spec models.FilterSpec) (*models.SearchResponse, error) {
	start := time.Now()
	if e.embedder == nil {
		return nil, ErrNoEmbedder
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := e.TextSearch(ctx, vec, topK, spec)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Results:    results,
		Statistics: ComputeStatistics(results),
		QueryTime:  time.Since(start).Milliseconds(),
		Query:      text,
	}, nil
}

// Similar wraps DocumentSearch in a response with statistics and timing.
func (e *Engine) Similar(ctx context.Context, id string, topK int) (*models.SearchResponse, error) {
	start := time.Now()
	results, err := e.DocumentSearch(ctx, id, topK)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Results:    results,
		Statistics: ComputeStatistics(results),
		QueryTime:  time.Since(start).Milliseconds(),
		DocumentID: id,
	}, nil
}

// Document returns a copy of the first document with the given id.
func (e *Engine) Document(id string) (*models.Document, error) {
	if e.corpus == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	idx, ok := e.corpus.IndexOf(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return e.corpus.Document(idx).Clone(), nil
}

// CorpusStats summarizes field coverage across the corpus.
func (e *Engine) CorpusStats() models.CorpusStats {
	if e.corpus == nil {
		return models.CorpusStats{}
	}
	return models.ComputeCorpusStats(e.corpus.Documents())
}

// searchOutcomes separates setup problems and bad requests from misses in the search metrics.
var searchOutcomes = []metrics.Outcome{
	{Err: ranking.ErrNoEmbeddings, Label: "no_embeddings"},
	{Err: ranking.ErrDimensionMismatch, Label: "dimension_mismatch"},
	{Err: ErrDocumentNotFound, Label: "not_found"},
	{Err: filter.ErrInvalidFilter, Label: "invalid_filter"},
	{Err: ErrEmptyQuery, Label: "empty_query"},
	{Err: ErrNoEmbedder, Label: "no_embedder"},
}

func (e *Engine) observe(kind string, start time.Time, results []*models.SearchResult, err error) {
	metrics.SearchRequestsTotal.WithLabelValues(kind, metrics.StatusLabel(err, searchOutcomes...)).Inc()
	metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.SearchResultsReturned.Observe(float64(len(results)))
	}
}
