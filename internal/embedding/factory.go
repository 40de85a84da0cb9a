package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/patsearch/internal/config"
)

// New builds the embedder named by cfg.Provider and wraps it in an LRU cache when
// cfg.CacheSize is positive. An unavailable ONNX runtime falls back to the mock embedder.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var embedder Embedder
	switch cfg.Provider {
	case ProviderMock:
		embedder = NewMockEmbedder(cfg.Dimensions)
	case ProviderONNX, "":
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, falling back to mock embeddings",
				zap.String("model_path", cfg.ModelPath), zap.Error(err))
			embedder = NewMockEmbedder(cfg.Dimensions)
		} else {
			embedder = onnx
		}
	case ProviderOpenAI:
		openaiEmbedder, err := NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.OpenAI.APIKey(),
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			User:       cfg.OpenAI.User,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		embedder = openaiEmbedder
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		embedder = NewCached(embedder, cfg.CacheSize)
	}
	return embedder, nil
}
