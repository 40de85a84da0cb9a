// Package indexer obtains the corpus embedding matrix: loaded from a store when present,
// computed and saved otherwise.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/embedding"
	"github.com/hyperjump/patsearch/internal/metrics"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/vector"
)

// DefaultBatchSize is the number of texts sent to the embedder per call.
const DefaultBatchSize = 32

// ProgressFunc is called after each embedded batch with the number of documents done.
type ProgressFunc func(done, total int)

// Builder produces an embedded corpus. Concurrent Build calls share one computation; a
// successful result is reused until Rebuild.
type Builder struct {
	store     vector.Store
	embedder  embedding.Embedder
	batchSize int
	progress  ProgressFunc
	logger    *zap.Logger

	mu     sync.Mutex
	corpus *vector.Corpus
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithProgress sets a callback invoked after every batch.
func WithProgress(fn ProgressFunc) BuilderOption {
	return func(b *Builder) { b.progress = fn }
}

// WithLogger sets a logger for load and compute events.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a builder persisting to store and computing with embedder.
func NewBuilder(store vector.Store, embedder embedding.Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{store: store, embedder: embedder, batchSize: DefaultBatchSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns docs with embeddings attached. Stored embeddings are used when they match
// docs; a missing store triggers computation followed by Save. A shape mismatch is returned
// as is and never overwritten automatically.
func (b *Builder) Build(ctx context.Context, docs []*models.Document) (*vector.Corpus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.corpus != nil {
		return b.corpus, nil
	}

	corpus, err := vector.LoadCorpus(ctx, b.store, docs)
	switch {
	case err == nil:
		b.logger.Info("loaded stored embeddings",
			zap.String("store", string(b.store.Kind())),
			zap.Int("documents", corpus.Len()),
			zap.Int("dimensions", corpus.Dimensions()),
		)
		metrics.CorpusEmbeddingsTotal.WithLabelValues("store").Inc()
		if d := b.embedder.Dimensions(); d > 0 && corpus.Len() > 0 && corpus.Dimensions() != d {
			b.logger.Warn("stored embeddings differ from embedder dimensions; queries will fail until rebuilt",
				zap.Int("stored", corpus.Dimensions()), zap.Int("embedder", d))
		}
		b.corpus = corpus
		return corpus, nil
	case errors.Is(err, vector.ErrNotFound):
		b.logger.Info("no stored embeddings, computing", zap.Int("documents", len(docs)))
	default:
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}

	corpus, err = b.computeAndSave(ctx, docs)
	if err != nil {
		return nil, err
	}
	b.corpus = corpus
	return corpus, nil
}

// Rebuild recomputes and saves embeddings regardless of what is stored.
func (b *Builder) Rebuild(ctx context.Context, docs []*models.Document) (*vector.Corpus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	corpus, err := b.computeAndSave(ctx, docs)
	if err != nil {
		return nil, err
	}
	b.corpus = corpus
	return corpus, nil
}

func (b *Builder) computeAndSave(ctx context.Context, docs []*models.Document) (*vector.Corpus, error) {
	start := time.Now()
	base := vector.NewCorpus(docs)
	vectors, err := b.compute(ctx, base.Texts())
	if err != nil {
		return nil, err
	}
	// All batches succeeded; commit in one step.
	corpus, err := base.WithEmbeddings(vectors)
	if err != nil {
		return nil, fmt.Errorf("embedder returned an invalid matrix: %w", err)
	}
	if err := vector.SaveCorpus(ctx, b.store, corpus); err != nil {
		return nil, fmt.Errorf("failed to save embeddings: %w", err)
	}
	metrics.CorpusEmbeddingsTotal.WithLabelValues("computed").Inc()
	b.logger.Info("computed and saved embeddings",
		zap.String("store", string(b.store.Kind())),
		zap.Int("documents", corpus.Len()),
		zap.Int("dimensions", corpus.Dimensions()),
		zap.Duration("duration", time.Since(start)),
	)
	return corpus, nil
}

func (b *Builder) compute(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, batch := range Batches(len(texts), b.batchSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := b.embedder.EmbedBatch(ctx, texts[batch.Start:batch.End])
		if err != nil {
			return nil, fmt.Errorf("failed to embed documents %d-%d: %w", batch.Start, batch.End-1, err)
		}
		if len(out) != batch.End-batch.Start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d documents: %w",
				len(out), batch.End-batch.Start, vector.ErrShapeMismatch)
		}
		vectors = append(vectors, out...)
		if b.progress != nil {
			b.progress(batch.End, len(texts))
		}
		b.logger.Debug("embedded batch", zap.Int("done", batch.End), zap.Int("total", len(texts)))
	}
	return vectors, nil
}
