package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/config"
	"github.com/hyperjump/patsearch/internal/embedding"
	"github.com/hyperjump/patsearch/internal/filter"
	"github.com/hyperjump/patsearch/internal/indexer"
	"github.com/hyperjump/patsearch/internal/ingest"
	"github.com/hyperjump/patsearch/internal/keyword"
	"github.com/hyperjump/patsearch/internal/models"
	"github.com/hyperjump/patsearch/internal/ranking"
	"github.com/hyperjump/patsearch/internal/search"
	"github.com/hyperjump/patsearch/internal/storage"
	"github.com/hyperjump/patsearch/internal/vector"
)

// Components holds initialized services.
type Components struct {
	Config   *config.Config
	Logger   *zap.Logger
	Catalog  *storage.SQLiteStorage
	Store    vector.Store
	Embedder embedding.Embedder
	Builder  *indexer.Builder
	Keywords *keyword.BleveIndex
	Engine   *search.Engine
}

func (c *Components) Close() {
	if c.Keywords != nil {
		_ = c.Keywords.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, builderOpts ...indexer.BuilderOption) (*Components, error) {
	catalog, err := storage.NewSQLiteStorage(cfg.Storage.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	c := &Components{Config: cfg, Logger: logger, Catalog: catalog}

	switch vector.StoreKind(cfg.Storage.EmbeddingsStore) {
	case vector.StoreKindSQLite:
		c.Store = catalog.EmbeddingStore()
	default:
		c.Store, err = vector.NewStore(cfg.Storage.EmbeddingsStore, cfg.Storage.EmbeddingsPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize embedding store: %w", err)
		}
	}

	c.Embedder, err = embedding.New(cfg.Embedding, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	opts := append([]indexer.BuilderOption{
		indexer.WithBatchSize(cfg.Embedding.BatchSize),
		indexer.WithLogger(logger),
	}, builderOpts...)
	c.Builder = indexer.NewBuilder(c.Store, c.Embedder, opts...)

	logger.Debug("components initialized",
		zap.String("catalog", cfg.Storage.CatalogPath),
		zap.String("embeddings_store", string(c.Store.Kind())),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Int("dimensions", c.Embedder.Dimensions()),
	)
	return c, nil
}

// ingestDocuments parses the configured data folder and replaces the catalog contents.
// A file-backed embedding matrix is removed since its rows no longer describe the catalog.
func (c *Components) ingestDocuments(ctx context.Context) ([]*models.Document, *ingest.Report, error) {
	ids, err := ingest.NewIDGenerator(c.Config.Data.IDStrategy)
	if err != nil {
		return nil, nil, err
	}
	loader := ingest.NewLoader(c.Config.Data.Folder,
		ingest.WithPattern(c.Config.Data.Pattern),
		ingest.WithIDGenerator(ids),
		ingest.WithLogger(c.Logger),
	)
	docs, report, err := loader.Load(ctx)
	if err != nil {
		return nil, report, err
	}
	if err := c.Catalog.ReplaceDocuments(ctx, docs); err != nil {
		return nil, report, err
	}
	if c.Store.Kind() == vector.StoreKindFile {
		if err := os.Remove(c.Config.Storage.EmbeddingsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.Logger.Warn("failed to remove stale embeddings", zap.String("path", c.Config.Storage.EmbeddingsPath), zap.Error(err))
		}
	}
	return docs, report, nil
}

// documents returns the catalog contents, ingesting the data folder first when the catalog
// is empty.
func (c *Components) documents(ctx context.Context) ([]*models.Document, error) {
	docs, err := c.Catalog.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		return docs, nil
	}
	c.Logger.Info("catalog is empty, ingesting data folder", zap.String("folder", c.Config.Data.Folder))
	docs, _, err = c.ingestDocuments(ctx)
	return docs, err
}

// buildEngine loads the corpus, obtains its embeddings, and wires the search engine.
// withKeywords builds the full-text index needed by keyword filters.
func (c *Components) buildEngine(ctx context.Context, withKeywords bool) (*search.Engine, error) {
	docs, err := c.documents(ctx)
	if err != nil {
		return nil, err
	}
	corpus, err := c.Builder.Build(ctx, docs)
	if err != nil {
		return nil, err
	}

	filterOpts := []filter.Option{filter.WithLogger(c.Logger)}
	if withKeywords {
		c.Keywords, err = keyword.NewBleveIndex(ctx, corpus.Documents())
		if err != nil {
			return nil, fmt.Errorf("failed to build keyword index: %w", err)
		}
		filterOpts = append(filterOpts, filter.WithKeywordMatcher(c.Keywords))
	}

	cfg := c.Config.Search
	ranker := ranking.NewEngine(&ranking.Config{ShardSize: cfg.ShardSize, Workers: cfg.Workers}, ranking.WithLogger(c.Logger))
	c.Engine = search.NewEngine(corpus,
		search.WithEmbedder(c.Embedder),
		search.WithFilterEngine(filter.NewEngine(filterOpts...)),
		search.WithRanker(ranker),
		search.WithReembedSimilar(cfg.ReembedSimilar),
		search.WithLogger(c.Logger),
	)
	return c.Engine, nil
}
