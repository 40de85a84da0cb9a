// Package ranking scores corpus rows against a query vector and selects the top k.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/patsearch/internal/filter"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/vector"
)

var (
	// ErrNoEmbeddings is returned when the corpus has no vectors yet.
	ErrNoEmbeddings = errors.New("embeddings not available")
	// ErrDimensionMismatch is returned when the query length differs from the corpus dimension.
	ErrDimensionMismatch = errors.New("query dimension mismatch")
)

// Engine ranks admissible corpus rows by cosine similarity.
type Engine struct {
	config *Config
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a ranking engine. A nil config uses DefaultConfig.
func NewEngine(cfg *Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()
	e := &Engine{config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type scored struct {
	index int
	score float64
}

// Search returns up to topK admissible rows ordered by descending similarity, ties broken
// by ascending corpus index. Results carry copies of the documents.
func (e *Engine) Search(ctx context.Context, corpus *vector.Corpus, query []float32, admissible filter.AdmissibleSet, topK int) ([]*models.SearchResult, error) {
	if corpus == nil || !corpus.HasEmbeddings() {
		return nil, ErrNoEmbeddings
	}
	if corpus.Len() == 0 {
		return []*models.SearchResult{}, nil
	}
	if len(query) != corpus.Dimensions() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), corpus.Dimensions())
	}
	if topK <= 0 {
		return []*models.SearchResult{}, nil
	}

	var candidates []int
	if admissible.IsUnrestricted() {
		candidates = make([]int, corpus.Len())
		for i := range candidates {
			candidates[i] = i
		}
	} else {
		// Indices that do not address a corpus row are never admissible.
		candidates = slices.DeleteFunc(admissible.Indices(), func(i int) bool {
			return i < 0 || i >= corpus.Len()
		})
	}
	if len(candidates) == 0 {
		return []*models.SearchResult{}, nil
	}

	scores, err := e.score(ctx, corpus, query, candidates)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(scores, compareScored)
	if topK < len(scores) {
		scores = scores[:topK]
	}

	results := make([]*models.SearchResult, len(scores))
	for i, s := range scores {
		results[i] = &models.SearchResult{
			Document: corpus.Document(s.index).Clone(),
			Score:    s.score,
			Rank:     i + 1,
			Index:    s.index,
		}
	}

	e.logger.Debug("ranked candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("top_k", topK),
		zap.Int("returned", len(results)),
	)
	return results, nil
}

// score computes similarities shard by shard. Each shard writes only its own slots, so the
// output does not depend on goroutine scheduling.
func (e *Engine) score(ctx context.Context, corpus *vector.Corpus, query []float32, candidates []int) ([]scored, error) {
	out := make([]scored, len(candidates))
	queryNorm := vector.L2Norm(query)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for start := 0; start < len(candidates); start += e.config.ShardSize {
		end := min(start+e.config.ShardSize, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := start; j < end; j++ {
				idx := candidates[j]
				out[j] = scored{
					index: idx,
					score: vector.CosineWithNorms(query, corpus.Vector(idx), queryNorm, corpus.Norm(idx)),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func compareScored(a, b scored) int {
	switch {
	case a.score > b.score:
		return -1
	case a.score < b.score:
		return 1
	case a.index < b.index:
		return -1
	case a.index > b.index:
		return 1
	}
	return 0
}
